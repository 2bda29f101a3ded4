package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

func newPlanCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show or override the detected subscription plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, planConfig, provenance := app.service.Plan(cmd.Context())
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, via %s): ~%d messages/day, ~%d/week\n",
				planConfig.DisplayName, id, provenance, planConfig.DailyMessageCap, planConfig.WeeklyMessageCap)
			return err
		},
	}

	cmd.AddCommand(newPlanSetCmd(app), newPlanClearCmd(app), newPlanListCmd(app))

	return cmd
}

func newPlanSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <plan>",
		Short: "Pin the plan, overriding auto-detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.PlanID(args[0])
			if err := app.service.SetPlan(cmd.Context(), id); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "plan pinned to %s\n", id)
			return err
		},
	}
}

func newPlanClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the plan override and re-detect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := app.service.ClearPlanOverride(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "override cleared, detected plan: %s\n", id)
			return err
		},
	}
}

func newPlanListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known plans and their quota estimates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := app.service.PlanCatalog()
			for _, id := range catalog.IDs() {
				row := catalog.Get(id)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12s ~%d/day  ~%d/week  %dh reset\n",
					id, row.DisplayName, row.DailyMessageCap, row.WeeklyMessageCap, row.ResetPeriodHours); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
