package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the session counters",
		Long:  "Resets the session message counter and clears any limit state. Daily statistics are kept unless --all is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all {
				if err := app.service.ClearAllData(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "all usage data cleared")
				return err
			}

			if err := app.service.ResetSession(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "session reset")
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also wipe daily statistics")

	return cmd
}
