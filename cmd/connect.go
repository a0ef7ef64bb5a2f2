package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newConnectCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet to sign billboard updates",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "injected",
			Short: "Connect the local wallet at injected_url",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConnect(cmd, app, func(ctx context.Context, rt *runtime) (domain.ConnectivityEvent, error) {
					return rt.controller.ConnectInjected(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "remote",
			Short: "Pair a remote wallet through the bridge",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConnect(cmd, app, func(ctx context.Context, rt *runtime) (domain.ConnectivityEvent, error) {
					return connectRemote(ctx, cmd, rt)
				})
			},
		},
	)

	return cmd
}

func newDisconnectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the active wallet and forget the remote session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.newRuntime(cmd.Context(), runtimeOptions{})
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.sessions.Start(cmd.Context()); err != nil {
				app.logger.Warn("resume wallet session", "err", err)
			}

			current := rt.sessions.Current()
			if current.Channel == domain.ChannelNone {
				// A stored session that could not be resumed is still forgotten.
				if err := app.sessions.Delete(cmd.Context()); err != nil {
					return fmt.Errorf("delete persisted session: %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "wallet: not connected")
				return err
			}

			if err := rt.controller.Disconnect(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "disconnected %s\n", current.Channel.Label())
			return err
		},
	}
}

func runConnect(cmd *cobra.Command, app *app, connect func(context.Context, *runtime) (domain.ConnectivityEvent, error)) error {
	rt, err := app.newRuntime(cmd.Context(), runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.sessions.Start(cmd.Context()); err != nil {
		app.logger.Warn("resume wallet session", "err", err)
	}

	event, err := connect(cmd.Context(), rt)
	if err != nil {
		if errors.Is(err, application.ErrChannelConflict) {
			current := rt.sessions.Current()
			return fmt.Errorf("%w: %s is active, run `bb disconnect` first", err, current.Channel.Label())
		}
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "connected %s (%s) on chain %d\n", event.Account, event.Channel.Label(), event.ChainID)
	return err
}

func connectRemote(ctx context.Context, cmd *cobra.Command, rt *runtime) (domain.ConnectivityEvent, error) {
	if _, ok := rt.sessions.RemoteSession(); ok {
		return rt.sessions.Current(), nil
	}

	var event domain.ConnectivityEvent
	_, err := runWithProgress(ctx, cmd.ErrOrStderr(), "Opening a bridge session...", func(ctx context.Context, send func(tea.Msg)) error {
		var connectErr error
		event, connectErr = rt.controller.ConnectRemote(ctx, func(pairing domain.Pairing) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Open this pairing URI in your wallet:\n%s\n", pairing.URI)
			send(pairingMsg{pairing: pairing})
		})
		return connectErr
	})
	return event, err
}
