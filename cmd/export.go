package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/version"
)

func newExportCmd(app *app) *cobra.Command {
	var outputPath string
	var save bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export usage data as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := app.service.Export(cmd.Context(), version.Version)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export payload: %w", err)
			}
			data = append(data, '\n')

			if save && outputPath == "" {
				outputPath = fmt.Sprintf("claude-usage-stats-%s.json", payload.ExportTime.Local().Format("2006-01-02"))
			}

			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(outputPath, data, 0o600); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outputPath)
			return err
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "Write to claude-usage-stats-<date>.json in the current directory")

	return cmd
}
