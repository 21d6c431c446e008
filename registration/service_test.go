package registration_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meal-coupon/coupon"
	"meal-coupon/registration"
	"meal-coupon/web/db"
)

func submission(team, ref string, veg, nonVeg int) registration.Submission {
	return registration.Submission{
		TeamName:         team,
		ContactName:      "Asha",
		Phone:            "+919812345678",
		Email:            "asha@example.com",
		College:          "NIT Calicut",
		MealCounts:       registration.MealCounts{registration.Veg: veg, registration.NonVeg: nonVeg},
		PaymentReference: ref,
	}
}

func newService(t *testing.T, opts ...registration.Option) (*registration.Service, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	return registration.NewService(store, opts...), store
}

func TestRegisterAndRedeem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 2, 1))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.TotalPrice != 180 {
		t.Errorf("total price = %d, want 180", reg.TotalPrice)
	}
	if !coupon.IsValidCode(reg.VerificationCode) {
		t.Errorf("bad verification code %q", reg.VerificationCode)
	}
	if reg.IsVerified || reg.PaymentStatus != registration.PaymentPending {
		t.Errorf("new registration should be pending: %+v", reg)
	}

	res, err := svc.Redeem(ctx, reg.ID, reg.VerificationCode)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if res.Outcome != registration.OutcomeRedeemed || !res.Registration.IsVerified || res.Registration.VerifiedAt == nil {
		t.Errorf("unexpected first redemption %+v", res)
	}

	res, err = svc.Redeem(ctx, reg.ID, reg.VerificationCode)
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	if res.Outcome != registration.OutcomeAlreadyVerified {
		t.Errorf("second redemption outcome = %s, want already_verified", res.Outcome)
	}

	_, err = svc.Register(ctx, submission("Beta", "utr001 ", 1, 0))
	var dup *registration.DuplicatePaymentReferenceError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate reference error, got %v", err)
	}
	if dup.Team != "Alpha" {
		t.Errorf("conflicting team = %q, want Alpha", dup.Team)
	}
}

func TestRedeemCodeMismatch(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, registration.WithCodeGenerator(func() (string, error) { return "482913", nil }))

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Redeem(ctx, reg.ID, "482914"); !errors.Is(err, registration.ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}
	stored, _ := store.GetByID(ctx, reg.ID)
	if stored.IsVerified {
		t.Error("mismatched code must not verify the registration")
	}

	if _, err := svc.Redeem(ctx, "missing", "482913"); !errors.Is(err, registration.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentRedeem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 3, 3))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	const stations = 25
	var redeemed, already atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < stations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Redeem(ctx, reg.ID, reg.VerificationCode)
			if err != nil {
				t.Errorf("redeem: %v", err)
				return
			}
			switch res.Outcome {
			case registration.OutcomeRedeemed:
				redeemed.Add(1)
			case registration.OutcomeAlreadyVerified:
				already.Add(1)
			}
		}()
	}
	wg.Wait()

	if redeemed.Load() != 1 || already.Load() != stations-1 {
		t.Errorf("redeemed=%d already=%d, want 1 and %d", redeemed.Load(), already.Load(), stations-1)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.Register(ctx, submission("Alpha", "UTR-A", 2, 1))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	b, err := svc.Register(ctx, submission("Beta", "UTR-B", 0, 3))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Redeem(ctx, a.ID, a.VerificationCode); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	c, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if c.Total != 2 || c.Verified != 1 || c.Pending != 1 {
		t.Errorf("unexpected totals %+v", c)
	}
	if c.MealTotals[registration.Veg] != 2 || c.MealTotals[registration.NonVeg] != 4 {
		t.Errorf("meal totals = %v, want veg=2 non_veg=4", c.MealTotals)
	}
	if c.Revenue != 180+240 {
		t.Errorf("revenue = %d, want 420", c.Revenue)
	}

	if _, err := svc.ReviewPayment(ctx, b.ID, registration.PaymentRejected); err != nil {
		t.Fatalf("review: %v", err)
	}
	c, _ = svc.Counts(ctx)
	if c.Revenue != 180 {
		t.Errorf("revenue after rejection = %d, want 180", c.Revenue)
	}
	if c.PaymentStatus[registration.PaymentRejected] != 1 || c.PaymentStatus[registration.PaymentPending] != 1 {
		t.Errorf("payment status counts = %v", c.PaymentStatus)
	}
}

func TestCountsEmpty(t *testing.T) {
	svc, _ := newService(t)
	c, err := svc.Counts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if c.Total != 0 || c.MealTotals[registration.Veg] != 0 || len(c.MealTotals) != 2 {
		t.Errorf("unexpected empty counts %+v", c)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*registration.Submission)
		field string
	}{
		{"missing team", func(s *registration.Submission) { s.TeamName = "  " }, "team_name"},
		{"bad email", func(s *registration.Submission) { s.Email = "not-an-email" }, "email"},
		{"missing reference", func(s *registration.Submission) { s.PaymentReference = "" }, "payment_reference"},
		{"no meals", func(s *registration.Submission) { s.MealCounts = registration.MealCounts{registration.Veg: 0} }, "meal_counts"},
		{"negative meals", func(s *registration.Submission) { s.MealCounts = registration.MealCounts{registration.Veg: -1, registration.NonVeg: 2} }, "meal_counts"},
		{"unknown meal", func(s *registration.Submission) { s.MealCounts = registration.MealCounts{"vegan": 1} }, "meal_counts"},
		{"too many meals", func(s *registration.Submission) { s.MealCounts[registration.Veg] = registration.MaxMealsPerCategory + 1 }, "meal_counts"},
		{"overflowing meals", func(s *registration.Submission) { s.MealCounts = registration.MealCounts{registration.Veg: 1 << 62, registration.NonVeg: 1 << 62} }, "meal_counts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)
			sub := submission("Alpha", "UTR001", 1, 1)
			tt.edit(&sub)

			_, err := svc.Register(context.Background(), sub)
			var verr *registration.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %s in %v", tt.field, verr.Fields)
			}
			if all, _ := store.ListAll(context.Background()); len(all) != 0 {
				t.Error("invalid submission was persisted")
			}
		})
	}
}

func TestRegisterMealCountLimit(t *testing.T) {
	svc, _ := newService(t)

	limit := registration.MaxMealsPerCategory
	reg, err := svc.Register(context.Background(), submission("Alpha", "UTR001", limit, limit))
	if err != nil {
		t.Fatalf("register at limit: %v", err)
	}
	want := int64(limit)*50 + int64(limit)*80
	if reg.TotalPrice != want {
		t.Errorf("total price = %d, want %d", reg.TotalPrice, want)
	}
}

func TestNotifierFailureDoesNotFailRegistration(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	notifier := registration.NotifierFunc(func(ctx context.Context, reg registration.Registration) error {
		calls.Add(1)
		if _, ok := ctx.Deadline(); !ok {
			t.Error("notification context has no deadline")
		}
		return errors.New("smtp down")
	})
	svc, store := newService(t, registration.WithNotifier(notifier), registration.WithNotifyTimeout(time.Second))

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	svc.Wait()

	if calls.Load() != 1 {
		t.Errorf("notifier called %d times, want 1", calls.Load())
	}
	if _, err := store.GetByID(ctx, reg.ID); err != nil {
		t.Errorf("registration missing after failed notification: %v", err)
	}
}

func TestByCodeDisambiguation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, registration.WithCodeGenerator(func() (string, error) { return "555555", nil }))

	alpha, err := svc.Register(ctx, submission("Alpha", "UTR-A", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, submission("Beta", "UTR-B", 1, 0)); err != nil {
		t.Fatalf("register: %v", err)
	}

	var amb *registration.AmbiguousCodeError
	if _, err := svc.ByCode(ctx, "555555", ""); !errors.As(err, &amb) || amb.Count != 2 {
		t.Fatalf("expected ambiguous code error for 2 matches, got %v", err)
	}

	got, err := svc.ByCode(ctx, "555555", "alpha")
	if err != nil {
		t.Fatalf("by code with team: %v", err)
	}
	if got.ID != alpha.ID {
		t.Errorf("resolved %s, want %s", got.ID, alpha.ID)
	}

	if _, err := svc.ByCode(ctx, "555555", "Gamma"); !errors.Is(err, registration.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown team, got %v", err)
	}
	if _, err := svc.ByCode(ctx, "12ab56", ""); !errors.As(err, new(*registration.ValidationError)) {
		t.Errorf("expected ValidationError for malformed code, got %v", err)
	}

	res, err := svc.RedeemByCode(ctx, "555555", "Alpha")
	if err != nil || res.Outcome != registration.OutcomeRedeemed {
		t.Fatalf("redeem by code: %+v %v", res, err)
	}
}

func TestResolvePayload(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	byID, err := svc.Resolve(ctx, coupon.Payload{ID: reg.ID, Code: reg.VerificationCode})
	if err != nil || byID.ID != reg.ID {
		t.Errorf("resolve by id: %v %v", byID, err)
	}

	byTeam, err := svc.Resolve(ctx, coupon.Payload{Code: reg.VerificationCode, Name: "Asha", Team: "Alpha"})
	if err != nil || byTeam.ID != reg.ID {
		t.Errorf("resolve by team: %v %v", byTeam, err)
	}
}

func TestReviewPayment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.ReviewPayment(ctx, reg.ID, registration.PaymentConfirmed)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if got.PaymentStatus != registration.PaymentConfirmed {
		t.Errorf("status = %s, want confirmed", got.PaymentStatus)
	}

	if _, err := svc.ReviewPayment(ctx, reg.ID, "refunded"); !errors.As(err, new(*registration.ValidationError)) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if _, err := svc.ReviewPayment(ctx, "missing", registration.PaymentRejected); !errors.Is(err, registration.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// flakyRepo applies the first SetVerified but reports a store failure, as a
// connection dropped after commit would.
type flakyRepo struct {
	*db.MemoryStore
	failures atomic.Int32
}

func (r *flakyRepo) SetVerified(ctx context.Context, id string, at time.Time, token string) (*registration.Registration, error) {
	reg, err := r.MemoryStore.SetVerified(ctx, id, at, token)
	if r.failures.Add(1) == 1 {
		return nil, &registration.StoreError{Op: "set_verified", Err: errors.New("connection reset")}
	}
	return reg, err
}

func TestRedeemRetriesStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{MemoryStore: db.NewMemoryStore()}
	svc := registration.NewService(repo)

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Redeem(ctx, reg.ID, reg.VerificationCode)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if res.Outcome != registration.OutcomeRedeemed {
		t.Errorf("outcome = %s, want redeemed", res.Outcome)
	}
	if repo.failures.Load() != 2 {
		t.Errorf("SetVerified called %d times, want 2", repo.failures.Load())
	}
}

// droppedRepo fails the first SetVerified before it reaches the store and runs
// meanwhile, so another station can redeem while the first one retries.
type droppedRepo struct {
	*db.MemoryStore
	calls     atomic.Int32
	meanwhile func()
}

func (r *droppedRepo) SetVerified(ctx context.Context, id string, at time.Time, token string) (*registration.Registration, error) {
	if r.calls.Add(1) == 1 {
		r.meanwhile()
		return nil, &registration.StoreError{Op: "set_verified", Err: errors.New("connection reset")}
	}
	return r.MemoryStore.SetVerified(ctx, id, at, token)
}

func TestRedeemRetryAfterOtherStationWins(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)
	repo := &droppedRepo{MemoryStore: db.NewMemoryStore()}
	svc := registration.NewService(repo, registration.WithClock(func() time.Time { return now }))

	reg, err := svc.Register(ctx, submission("Alpha", "UTR001", 1, 0))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var other registration.RedeemResult
	repo.meanwhile = func() {
		var oerr error
		if other, oerr = svc.Redeem(ctx, reg.ID, reg.VerificationCode); oerr != nil {
			t.Errorf("second station: %v", oerr)
		}
	}

	first, err := svc.Redeem(ctx, reg.ID, reg.VerificationCode)
	if err != nil {
		t.Fatalf("first station: %v", err)
	}
	if other.Outcome != registration.OutcomeRedeemed {
		t.Errorf("second station outcome = %s, want redeemed", other.Outcome)
	}
	if first.Outcome != registration.OutcomeAlreadyVerified {
		t.Errorf("first station outcome = %s, want already_verified", first.Outcome)
	}
}

func TestNotifiersAttemptsAll(t *testing.T) {
	var calls []string
	ns := registration.Notifiers{
		registration.NotifierFunc(func(context.Context, registration.Registration) error {
			calls = append(calls, "email")
			return errors.New("smtp down")
		}),
		registration.NotifierFunc(func(context.Context, registration.Registration) error {
			calls = append(calls, "telegram")
			return nil
		}),
	}

	err := ns.Notify(context.Background(), registration.Registration{ID: "r1"})
	if err == nil || err.Error() != "smtp down" {
		t.Errorf("expected joined email error, got %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("calls = %v, want both notifiers", calls)
	}
}
