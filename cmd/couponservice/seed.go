package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"meal-coupon/registration"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedColleges = []string{"CET Trivandrum", "NIT Calicut", "TKM Kollam", "MEC Kochi", "GEC Thrissur"}

func seedCmd() *cobra.Command {
	var (
		n        int
		verified float64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create test registrations for a dry run of the counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.shutdown()

			rng := rand.New(rand.NewSource(rand.Int63()))
			return seed(cmd.Context(), a.service(), n, verified, rng, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 50, "number of registrations to create")
	cmd.Flags().Float64Var(&verified, "verified", 0, "fraction of seeded coupons to redeem right away")
	return cmd
}

// seed registers n teams with random meal counts and redeems a share of them.
func seed(ctx context.Context, svc *registration.Service, n int, verified float64, rng *rand.Rand, w io.Writer) error {
	menu := svc.Menu().Categories()
	if len(menu) == 0 {
		return fmt.Errorf("menu is empty")
	}

	redeemed := 0
	for i := 0; i < n; i++ {
		counts := registration.MealCounts{}
		for counts.Total() == 0 {
			for _, c := range menu {
				counts[c] = rng.Intn(4)
			}
		}

		suffix := uuid.New().String()[:8]
		reg, err := svc.Register(ctx, registration.Submission{
			TeamName:         fmt.Sprintf("Seed Team %03d-%s", i+1, suffix),
			ContactName:      fmt.Sprintf("Member %d", i+1),
			Phone:            fmt.Sprintf("+9198%08d", rng.Intn(100000000)),
			Email:            fmt.Sprintf("seed-%s@example.com", suffix),
			College:          seedColleges[rng.Intn(len(seedColleges))],
			MealCounts:       counts,
			PaymentReference: "SEED-" + suffix,
		})
		if err != nil {
			return fmt.Errorf("seed registration %d: %w", i+1, err)
		}

		if rng.Float64() < verified {
			if _, err := svc.Redeem(ctx, reg.ID, reg.VerificationCode); err != nil {
				return fmt.Errorf("redeem seeded registration %d: %w", i+1, err)
			}
			redeemed++
		}
	}

	fmt.Fprintf(w, "seeded %d registrations, %d redeemed\n", n, redeemed)
	return nil
}
