package registration

import "context"

type Counts struct {
	Total         int                   `json:"total"`
	Pending       int                   `json:"pending"`
	Verified      int                   `json:"verified"`
	MealTotals    map[Category]int      `json:"meal_totals"`
	Revenue       int64                 `json:"revenue"`
	PaymentStatus map[PaymentStatus]int `json:"payment_status"`
}

// Counts scans every registration on each call. Event datasets are a few hundred rows.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	regs, err := s.repo.ListAll(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Tally(regs, s.menu), nil
}

// Tally aggregates regs. Revenue leaves out registrations whose payment was rejected.
func Tally(regs []Registration, menu Menu) Counts {
	c := Counts{
		MealTotals: make(map[Category]int, len(menu)),
		PaymentStatus: map[PaymentStatus]int{
			PaymentPending:   0,
			PaymentConfirmed: 0,
			PaymentRejected:  0,
		},
	}
	for cat := range menu {
		c.MealTotals[cat] = 0
	}

	for _, r := range regs {
		c.Total++
		if r.IsVerified {
			c.Verified++
		} else {
			c.Pending++
		}
		for cat, n := range r.MealCounts {
			c.MealTotals[cat] += n
		}
		c.PaymentStatus[r.PaymentStatus]++
		if r.PaymentStatus != PaymentRejected {
			c.Revenue += r.TotalPrice
		}
	}
	return c
}
