package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var days int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily utilization samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("days must be positive, got %d", days)
			}

			samples := app.service.History(days)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(samples)
			}

			for _, sample := range samples {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  5h %3d%%  7d %3d%%  opus %3d%%\n",
					sample.DateKey, sample.FiveHourPercent, sample.SevenDayPercent, sample.SevenDayOpusPercent); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Trailing window size in days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
