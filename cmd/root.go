package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cwm",
		Short:         "Claude Web Monitor (cwm): track message usage and rate limits",
		Long:          "cwm (Claude Web Monitor) tracks how many messages you have sent to Claude, detects rate-limit episodes from observed traffic and page text, estimates when limits lift, and shows usage against your plan's quotas.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.service.Init(cmd.Context())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(app),
		newWatchCmd(app),
		newObserveCmd(app),
		newScanCmd(app),
		newPlanCmd(app),
		newAddCmd(app),
		newResetCmd(app),
		newRefreshCmd(app),
		newHistoryCmd(app),
		newExportCmd(app),
	)

	return rootCmd
}
