package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/marketing-insights-api/internal/config"
	"github.com/vfg2006/marketing-insights-api/internal/domain"
	"github.com/vfg2006/marketing-insights-api/internal/usecases/insighting"
	"github.com/vfg2006/marketing-insights-api/pkg/utils"
)

// pipelineLoader carrega configuração e runner; devolve também a função de encerramento
type pipelineLoader func(ctx context.Context) (*config.Config, insighting.Runner, func(), error)

var errUnitsFailed = errors.New("some units failed")

func newRootCmd(load pipelineLoader) *cobra.Command {
	root := &cobra.Command{
		Use:          "insightctl",
		Short:        "Run the marketing insights pipeline from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(load))
	return root
}

func newRunCmd(load pipelineLoader) *cobra.Command {
	var (
		businessID string
		all        bool
		types      []string
		startDate  string
		endDate    string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate insights for one business or for all businesses",
		Example: "  insightctl run --business 7f3c --types engagement_trend,recommendation --start 2024-03-01 --end 2024-03-07\n" +
			"  insightctl run --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (businessID != "") {
				return errors.New("exactly one of --business or --all is required")
			}

			insightTypes, err := domain.ParseInsightTypes(types)
			if err != nil {
				return err
			}

			start, err := utils.ParseDate(startDate)
			if err != nil {
				return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
			}
			end, err := utils.ParseDate(endDate)
			if err != nil {
				return fmt.Errorf("--end must be YYYY-MM-DD: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cfg, runner, closeFn, err := load(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			window, err := domain.ResolveWindow(start, end, cfg.Pipeline.DefaultWindowDays, time.Now())
			if err != nil {
				return err
			}

			var report *domain.RunReport
			if all {
				report, err = runner.RunForAllBusinesses(ctx, insightTypes, window)
			} else {
				report, err = runner.RunPipeline(ctx, businessID, insightTypes, window)
			}
			if err != nil {
				return err
			}

			out, err := utils.PrettyJson(report)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if report.Failed > 0 {
				fmt.Fprint(cmd.ErrOrStderr(), retryHints(report, window))
				return fmt.Errorf("%w: %d of %d %v", errUnitsFailed, report.Failed, len(report.Outcomes), report.FailuresByKind())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&businessID, "business", "", "business id to process")
	cmd.Flags().BoolVar(&all, "all", false, "process every business")
	cmd.Flags().StringSliceVar(&types, "types", nil, "comma separated insight types (default all)")
	cmd.Flags().StringVar(&startDate, "start", "", "first day of the window, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "last day of the window, inclusive (YYYY-MM-DD)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop scheduling new units after this long")

	return cmd
}

// retryHints monta um comando por negócio com apenas os tipos que falharam
func retryHints(report *domain.RunReport, window domain.TimeRange) string {
	var (
		b    strings.Builder
		seen = make(map[string]bool)
	)
	for _, o := range report.Outcomes {
		if o.Status != domain.UnitFailed || seen[o.BusinessID] {
			continue
		}
		seen[o.BusinessID] = true

		failed := report.FailedInsightTypes(o.BusinessID)
		names := make([]string, len(failed))
		for i, t := range failed {
			names[i] = t.String()
		}

		fmt.Fprintf(&b, "retry: insightctl run --business %s --types %s --start %s --end %s\n",
			o.BusinessID,
			strings.Join(names, ","),
			window.Start.Format(time.DateOnly),
			window.End.AddDate(0, 0, -1).Format(time.DateOnly),
		)
	}
	return b.String()
}
