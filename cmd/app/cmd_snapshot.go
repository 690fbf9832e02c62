package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"InsiderPulse/internal/di"
	"InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	"InsiderPulse/pkg/util"

	"github.com/spf13/cobra"
)

var (
	snapKind         string
	snapDays         int
	snapJurisdiction string
	snapAsOf         string
	snapHistory      bool
	snapISIN         string
	snapTimeout      time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute one analytics result and print it as JSON",
	Long: `Compute a single analytics result against the configured store and
print it to stdout.

Examples:
  insiderpulse snapshot --kind sentiment --days 90
  insiderpulse snapshot --kind ticker --days 30 --isin DE0007164600
  insiderpulse snapshot --kind dashboard --as-of 2025-06-30`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapKind, "kind", "sentiment", "sentiment|current|breadth|movers|trends|ticker|dashboard")
	snapshotCmd.Flags().IntVar(&snapDays, "days", 90, "window length in days")
	snapshotCmd.Flags().StringVar(&snapJurisdiction, "jurisdiction", "", "restrict to one jurisdiction")
	snapshotCmd.Flags().StringVar(&snapAsOf, "as-of", "", "evaluate at the end of this day (YYYY-MM-DD)")
	snapshotCmd.Flags().BoolVar(&snapHistory, "history", false, "include the daily series")
	snapshotCmd.Flags().StringVar(&snapISIN, "isin", "", "comma separated ISINs for the ticker")
	snapshotCmd.Flags().DurationVar(&snapTimeout, "timeout", 30*time.Second, "computation timeout")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	asOf := time.Now().UTC()
	if snapAsOf != "" {
		t, ok := util.ParseTime(snapAsOf)
		if !ok {
			return fmt.Errorf("invalid --as-of %q", snapAsOf)
		}
		asOf = t
	}

	a, cleanup, err := di.InitializeAnalytics(cfg)
	if err != nil {
		return fmt.Errorf("analytics initialization failed: %w", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), snapTimeout)
	defer cancel()

	var out interface{}
	switch snapKind {
	case "sentiment":
		out, err = a.Sentiment.ComputeSentiment(ctx, models.SentimentQuery{
			AsOf: asOf, Days: snapDays, Jurisdiction: snapJurisdiction, IncludeHistory: snapHistory,
		})
	case "current":
		out, err = a.Sentiment.CurrentSentiment(ctx, asOf, snapJurisdiction)
	case "breadth":
		out, err = a.Sentiment.MarketBreadth(ctx, models.RankingQuery{AsOf: asOf, Days: snapDays, Jurisdiction: snapJurisdiction})
	case "movers":
		out, err = a.Sentiment.TopMovers(ctx, models.RankingQuery{
			AsOf: asOf, Days: snapDays, Jurisdiction: snapJurisdiction, Limit: 20, MinTransactions: 3,
		})
	case "trends":
		out, err = a.Sentiment.Trends(ctx, asOf, snapJurisdiction)
	case "ticker":
		out, err = a.Ticker.ComputeTicker(ctx, models.TickerQuery{
			AsOf: asOf, Days: snapDays, MinTrades: 1, MinTotalAmount: 10000,
			ISINs: domrepo.SplitEntityIDs(snapISIN), Limit: 100,
		})
	case "dashboard":
		out, err = a.Dashboard.Overview(ctx, asOf, snapJurisdiction)
	default:
		return fmt.Errorf("unknown --kind %q", snapKind)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
