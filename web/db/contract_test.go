package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"meal-coupon/registration"
)

func newRegistration(id, team, ref, code string, at time.Time) *registration.Registration {
	return &registration.Registration{
		ID:               id,
		TeamName:         team,
		ContactName:      "Contact " + team,
		Phone:            "+919800000000",
		Email:            "team@example.com",
		College:          "CET Trivandrum",
		MealCounts:       registration.MealCounts{registration.Veg: 2, registration.NonVeg: 1},
		TotalPrice:       180,
		PaymentReference: ref,
		PaymentStatus:    registration.PaymentPending,
		VerificationCode: code,
		CreatedAt:        at,
	}
}

// testRepository runs the behaviour every registration.Repository must provide.
func testRepository(t *testing.T, newRepo func(t *testing.T) registration.Repository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, newRegistration("r1", "Alpha", "UTR001", "123456", base)); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.GetByID(ctx, "r1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TeamName != "Alpha" || got.VerificationCode != "123456" || got.IsVerified {
			t.Errorf("unexpected registration %+v", got)
		}
		if got.MealCounts[registration.Veg] != 2 || got.MealCounts[registration.NonVeg] != 1 {
			t.Errorf("meal counts not persisted: %v", got.MealCounts)
		}
		if !got.CreatedAt.Equal(base) {
			t.Errorf("created_at = %v, want %v", got.CreatedAt, base)
		}

		byRef, err := repo.GetByPaymentReference(ctx, "UTR001")
		if err != nil || byRef.ID != "r1" {
			t.Errorf("get by reference: %v %+v", err, byRef)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, registration.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.GetByPaymentReference(ctx, "nope"); !errors.Is(err, registration.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.SetVerified(ctx, "nope", base, "t0"); !errors.Is(err, registration.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.SetPaymentStatus(ctx, "nope", registration.PaymentConfirmed); !errors.Is(err, registration.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		matches, err := repo.GetByCode(ctx, "999999")
		if err != nil || len(matches) != 0 {
			t.Errorf("expected no matches, got %v %v", matches, err)
		}
	})

	t.Run("duplicate payment reference", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, newRegistration("r1", "Alpha", "UTR001", "123456", base)); err != nil {
			t.Fatalf("create: %v", err)
		}
		err := repo.Create(ctx, newRegistration("r2", "Beta", "UTR001", "654321", base.Add(time.Minute)))

		var dup *registration.DuplicatePaymentReferenceError
		if !errors.As(err, &dup) {
			t.Fatalf("expected DuplicatePaymentReferenceError, got %v", err)
		}
		if dup.Team != "Alpha" {
			t.Errorf("conflicting team = %q, want Alpha", dup.Team)
		}
		if _, err := repo.GetByID(ctx, "r2"); !errors.Is(err, registration.ErrNotFound) {
			t.Errorf("rejected registration was persisted: %v", err)
		}
	})

	t.Run("concurrent duplicate inserts", func(t *testing.T) {
		repo := newRepo(t)
		const n = 8
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- repo.Create(ctx, newRegistration(fmt.Sprintf("c%d", i), fmt.Sprintf("Team%d", i), "UTR-RACE", "111111", base.Add(time.Duration(i)*time.Second)))
			}(i)
		}
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			switch {
			case err == nil:
				created++
			case errors.Is(err, registration.ErrDuplicatePaymentReference):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if created != 1 {
			t.Errorf("expected exactly one insert to win, got %d", created)
		}
	})

	t.Run("by code and list order", func(t *testing.T) {
		repo := newRepo(t)
		regs := []*registration.Registration{
			newRegistration("a", "Alpha", "UTR1", "222222", base),
			newRegistration("b", "Beta", "UTR2", "222222", base.Add(time.Minute)),
			newRegistration("c", "Gamma", "UTR3", "333333", base.Add(2*time.Minute)),
		}
		for _, r := range regs {
			if err := repo.Create(ctx, r); err != nil {
				t.Fatalf("create %s: %v", r.ID, err)
			}
		}

		matches, err := repo.GetByCode(ctx, "222222")
		if err != nil {
			t.Fatalf("by code: %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(matches))
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
			t.Errorf("expected newest first, got %v", ids(all))
		}
	})

	t.Run("set verified once", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, newRegistration("r1", "Alpha", "UTR001", "123456", base)); err != nil {
			t.Fatalf("create: %v", err)
		}

		at := base.Add(time.Hour)
		got, err := repo.SetVerified(ctx, "r1", at, "first")
		if err != nil {
			t.Fatalf("set verified: %v", err)
		}
		if !got.IsVerified || got.VerifiedAt == nil || !got.VerifiedAt.Equal(at) || got.RedemptionID != "first" {
			t.Errorf("unexpected registration %+v", got)
		}

		if _, err := repo.SetVerified(ctx, "r1", at, "second"); !errors.Is(err, registration.ErrAlreadyVerified) {
			t.Errorf("expected ErrAlreadyVerified, got %v", err)
		}
		again, _ := repo.GetByID(ctx, "r1")
		if !again.VerifiedAt.Equal(at) || again.RedemptionID != "first" {
			t.Errorf("second update overwrote the redemption: %+v", again)
		}
	})

	t.Run("concurrent set verified", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, newRegistration("r1", "Alpha", "UTR001", "123456", base)); err != nil {
			t.Fatalf("create: %v", err)
		}

		const n = 16
		var wg sync.WaitGroup
		var mu sync.Mutex
		won, lost := 0, 0
		for i := 0; i < n; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.SetVerified(ctx, "r1", base, fmt.Sprintf("station-%d", i))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					won++
				case errors.Is(err, registration.ErrAlreadyVerified):
					lost++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if won != 1 || lost != n-1 {
			t.Errorf("won=%d lost=%d, want 1 and %d", won, lost, n-1)
		}
	})

	t.Run("payment status", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, newRegistration("r1", "Alpha", "UTR001", "123456", base)); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := repo.SetPaymentStatus(ctx, "r1", registration.PaymentConfirmed)
		if err != nil {
			t.Fatalf("set payment status: %v", err)
		}
		if got.PaymentStatus != registration.PaymentConfirmed || got.IsVerified {
			t.Errorf("unexpected registration %+v", got)
		}
	})
}

func ids(regs []registration.Registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.ID
	}
	return out
}
