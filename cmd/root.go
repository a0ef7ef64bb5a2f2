package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "bb",
		Short:         "Billboard CLI (bb): read and bid on the on-chain billboard",
		Long:          "bb shows the current on-chain billboard and its previous versions, connects a local or remote wallet, and submits higher bids that replace the billboard text.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(commandContext(cmd), configPath, cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			app.close(context.WithoutCancel(commandContext(cmd)))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.billboard/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(app),
		newShowCmd(app),
		newHistoryCmd(app),
		newStatusCmd(app),
		newConnectCmd(app),
		newDisconnectCmd(app),
		newUpdateCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
