package cmd

import (
	"os"
	"os/signal"
	"syscall"

	billboardrender "github.com/bnema/billboard-cli/internal/adapters/render/billboard"
	"github.com/bnema/billboard-cli/internal/application"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the billboard on screen and refresh it on every on-chain update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := app.newRuntime(ctx, runtimeOptions{watch: true})
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.controller.Init(ctx); err != nil {
				app.logger.Warn("billboard sync incomplete", "err", err)
			}

			store := rt.controller.Store()
			subscribe := func(fn func(application.Snapshot)) func() {
				return store.Subscribe(fn)
			}

			return billboardrender.Watch(ctx, cmd.OutOrStdout(), store.Snapshot(), subscribe, billboardrender.RenderOptions{ShowHistory: withHistory})
		},
	}

	cmd.Flags().BoolVar(&withHistory, "history", false, "Include previous billboards")

	return cmd
}
