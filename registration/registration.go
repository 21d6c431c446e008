// Package registration holds the meal coupon lifecycle: team registrations, the
// duplicate payment reference guard, code redemption and the aggregate counts.
package registration

import (
	"sort"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRejected  PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentConfirmed, PaymentRejected:
		return true
	}
	return false
}

// Category is a meal option on the menu.
type Category string

const (
	Veg    Category = "veg"
	NonVeg Category = "non_veg"
)

// MealCounts is the number of meals ordered per category.
type MealCounts map[Category]int

func (m MealCounts) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

func (m MealCounts) clone() MealCounts {
	out := make(MealCounts, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Registration is one team's meal coupon.
type Registration struct {
	ID               string        `json:"id"`
	TeamName         string        `json:"team_name"`
	ContactName      string        `json:"contact_name"`
	Phone            string        `json:"phone"`
	Email            string        `json:"email"`
	College          string        `json:"college"`
	MealCounts       MealCounts    `json:"meal_counts"`
	TotalPrice       int64         `json:"total_price"`
	PaymentReference string        `json:"payment_reference"`
	PaymentProofRef  string        `json:"payment_proof_ref"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	VerificationCode string        `json:"verification_code"`
	IsVerified       bool          `json:"is_verified"`
	VerifiedAt       *time.Time    `json:"verified_at,omitempty"`
	RedemptionID     string        `json:"-"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Menu maps each meal category to its unit price in whole rupees.
type Menu map[Category]int64

func DefaultMenu() Menu {
	return Menu{
		Veg:    50,
		NonVeg: 80,
	}
}

// Categories returns the menu categories in a stable order.
func (m Menu) Categories() []Category {
	out := make([]Category, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Price is Σ(count × unit price). Counts must already be validated against the menu.
func (m Menu) Price(counts MealCounts) int64 {
	var total int64
	for c, n := range counts {
		total += int64(n) * m[c]
	}
	return total
}
