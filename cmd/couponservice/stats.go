package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"meal-coupon/registration"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var (
		url      string
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Poll a running service and print live registration counts",
		Long: `Poll GET /api/stats at a fixed interval, like the admin dashboard does.

Examples:
  couponservice stats --url http://192.168.1.20:8080
  couponservice stats --interval 5s --count 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := &http.Client{Timeout: 10 * time.Second}
			return pollStats(ctx, client, url, interval, count, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://localhost:8080", "base URL of the coupon service")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 10*time.Second, "polling interval")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after n polls (0 polls until interrupted)")
	return cmd
}

// pollStats prints counts every interval. A failed poll is reported and polling continues.
func pollStats(ctx context.Context, client *http.Client, base string, interval time.Duration, count int, w io.Writer) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	endpoint := strings.TrimRight(base, "/") + "/api/stats"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		c, err := fetchStats(ctx, client, endpoint)
		if err != nil {
			fmt.Fprintf(w, "%s  error: %v\n", time.Now().Format("15:04:05"), err)
		} else {
			fmt.Fprintln(w, formatCounts(time.Now(), c))
		}

		if count > 0 && n >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func fetchStats(ctx context.Context, client *http.Client, endpoint string) (registration.Counts, error) {
	var c registration.Counts
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return c, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c, fmt.Errorf("stats returned %s", resp.Status)
	}
	err = json.NewDecoder(resp.Body).Decode(&c)
	return c, err
}

func formatCounts(at time.Time, c registration.Counts) string {
	var meals []string
	for _, cat := range sortedCategories(c.MealTotals) {
		meals = append(meals, fmt.Sprintf("%s=%d", cat, c.MealTotals[cat]))
	}
	return fmt.Sprintf("%s  teams=%d verified=%d pending=%d meals[%s] revenue=%d",
		at.Format("15:04:05"), c.Total, c.Verified, c.Pending, strings.Join(meals, " "), c.Revenue)
}

func sortedCategories(m map[registration.Category]int) []registration.Category {
	menu := make(registration.Menu, len(m))
	for c := range m {
		menu[c] = 0
	}
	return menu.Categories()
}
