package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newScanCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [text]",
		Short: "Scan page text for limit messages",
		Long:  "Scans visible page text for rate-limit phrasing, in English or Chinese. Reads from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read text: %w", err)
				}
				text = string(raw)
			}

			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text to scan")
			}

			detected, err := app.service.ScanContent(cmd.Context(), text)
			if err != nil {
				return err
			}

			if detected {
				snapshot, err := app.service.Status(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "limit detected: reset in %s\n", snapshot.FormattedRemaining)
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "no limit message found")
			return err
		},
	}

	return cmd
}
