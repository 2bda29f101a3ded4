package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <count>",
		Short: "Manually add sent messages to the counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count <= 0 {
				return fmt.Errorf("count must be a positive integer, got %q", args[0])
			}

			if err := app.service.ManualAdd(cmd.Context(), count); err != nil {
				return err
			}

			snapshot, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %d, session total %d\n", count, snapshot.MessageCount)
			return err
		},
	}
}
