package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rclctl",
		Short:         "rclctl: admin console for the RCL-2 and Hobby backend",
		Long:          "rclctl inspects and tunes a running RCL-2 backend from the terminal: restraint limits, council deliberations, cognitive debt, narrative memory, eigenmemory, IQL and the Hobby subsystem, either as one-shot commands or through the live dashboard.",
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

	rootCmd.PersistentFlags().StringVar(&app.profileName, "profile", "", "Connection profile (default: the active profile)")
	rootCmd.PersistentFlags().StringVar(&app.baseURL, "base-url", "", "Backend base URL, overrides profile and config")
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return app.initLogger()
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Sync()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newDashboardCmd(app),
		newRestraintsCmd(app),
		newCouncilCmd(app),
		newDebtCmd(app),
		newDecisionsCmd(app),
		newCognitiveCmd(app),
		newNarrativeCmd(app),
		newMemoryCmd(app),
		newIQLCmd(app),
		newHobbyCmd(app),
		newSecurityCmd(app),
		newWatchCmd(app),
		newProfileCmd(app),
		newTokenCmd(app),
	)

	return rootCmd
}
