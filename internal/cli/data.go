package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func openStore(cfg *config.Config) (*store.Store, error) {
	backend, err := store.OpenBackend(&cfg.Store)
	if err != nil {
		return nil, err
	}
	return store.New(backend, store.Options{Quota: cfg.Store.SlotQuotaBytes, Logger: zap.NewNop()}), nil
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the sample profile, analyses, reminders and insights",
		Long: `Seed the health-data store. The profile is written when missing; the
sample records are written only when no analyses exist yet, so running
the command twice changes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			seeded, err := st.Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed store: %w", err)
			}

			w := cmd.OutOrStdout()
			if done, err := render(w, outputFormat, map[string]bool{"seeded": seeded}); done {
				return err
			}
			if seeded {
				printSuccess(w, "Sample data written to "+cfg.Store.Driver+" store")
			} else {
				printSuccess(w, "Store already holds analyses; nothing to seed")
			}
			return nil
		},
	}
}

type statsReport struct {
	Stats  *domain.HealthStats  `json:"stats" yaml:"stats"`
	Trends []domain.HealthTrend `json:"trends" yaml:"trends"`
}

func newStatsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the stored analysis history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := collectStats(cmd.Context(), st, time.Now(), days)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if done, err := render(w, outputFormat, report); done {
				return err
			}

			printHeader(w, "Health statistics")
			printField(w, "Total analyses", report.Stats.TotalAnalyses)
			printField(w, "This week", report.Stats.ThisWeek)
			printField(w, "This month", report.Stats.ThisMonth)
			printField(w, "Avg confidence", fmt.Sprintf("%d%%", report.Stats.AverageConfidence))
			printField(w, "Streak (days)", report.Stats.Streak)

			printHeader(w, fmt.Sprintf("Last %d days", len(report.Trends)))
			for _, t := range report.Trends {
				fmt.Fprintf(w, "  %s  %3d analyses  %3d%%\n", t.Date, t.Analyses, t.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", store.DefaultTrendDays, "Number of days in the trend table")
	return cmd
}

func collectStats(ctx context.Context, st *store.Store, now time.Time, days int) (*statsReport, error) {
	stats, err := st.Stats(ctx, now)
	if err != nil {
		return nil, err
	}
	trends, err := st.Trends(ctx, now, days)
	if err != nil {
		return nil, err
	}
	return &statsReport{Stats: stats, Trends: trends}, nil
}
