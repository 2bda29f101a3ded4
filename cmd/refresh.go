package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

func newRefreshCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the authoritative usage report",
		Long:  "Fetches utilization windows from the usage endpoint, records a daily history sample, and refreshes plan detection. Requires api.token to be configured.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var report domain.UsageReport

			fetch := func(ctx context.Context) error {
				var err error
				report, err = app.service.ForceRefresh(ctx)
				return err
			}

			if asJSON {
				if err := fetch(cmd.Context()); err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching usage report...", fetch); err != nil {
				return err
			}

			return writeReport(cmd, app, report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeReport(cmd *cobra.Command, app *app, report domain.UsageReport) error {
	if !report.HasWindows() {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no utilization windows in report")
		return err
	}

	for _, row := range []struct {
		label  string
		window *domain.UsageWindow
	}{
		{"5h", report.FiveHour},
		{"7d", report.SevenDay},
		{"7d opus", report.SevenDayOpus},
	} {
		if row.window == nil {
			continue
		}
		line := fmt.Sprintf("%-8s %3d%%", row.label, row.window.UsedPercent())
		if !row.window.ResetsAt.IsZero() {
			line += "  resets " + domain.FormatClock(row.window.ResetsAt)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}

	if report.PlanType != "" {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "plan type: %s\n", report.PlanType); err != nil {
			return err
		}
	}

	return nil
}
