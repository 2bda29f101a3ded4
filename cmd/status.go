package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	statusadapter "github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/render/status"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var historyDays int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current usage, limits, and plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			_, planConfig, provenance := app.service.Plan(cmd.Context())
			opts := statusadapter.RenderOptions{
				Now:        app.now(),
				Plan:       planConfig,
				Provenance: provenance,
			}
			if report, ok := app.service.LastReport(); ok {
				opts.Report = &report
			}
			if historyDays > 0 {
				opts.History = app.service.History(historyDays)
			}

			rendered, err := app.statusRenderer(snapshot, opts)
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&historyDays, "history", 0, "Include a trailing history window of N days")

	return cmd
}
