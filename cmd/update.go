package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	billboardrender "github.com/bnema/billboard-cli/internal/adapters/render/billboard"
	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type updateFlags struct {
	first  string
	second string
	third  string
	price  string
}

func newUpdateCmd(app *app) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Bid on the billboard and replace its text",
		Long:  "update sends an updateBillboard transaction through the connected wallet. The bid must exceed the current price; --price defaults to the smallest valid bid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.first, "first", "", "First billboard line")
	cmd.Flags().StringVar(&flags.second, "second", "", "Second billboard line")
	cmd.Flags().StringVar(&flags.third, "third", "", "Third billboard line")
	cmd.Flags().StringVar(&flags.price, "price", "", "Bid in ether (default: current price + 1 wei)")

	return cmd
}

func runUpdate(cmd *cobra.Command, app *app, flags updateFlags) error {
	rt, err := app.newRuntime(cmd.Context(), runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.controller.Init(cmd.Context()); err != nil {
		app.logger.Warn("billboard sync incomplete", "err", err)
	}

	snapshot := rt.controller.Store().Snapshot()
	price, err := bidPrice(flags.price, snapshot)
	if err != nil {
		return err
	}

	form := domain.UpdateForm{
		Lines: [domain.LineCount]string{flags.first, flags.second, flags.third},
		Price: price,
	}

	store := rt.controller.Store()
	var hash string
	label := fmt.Sprintf("Bidding %s Ξ, confirm in your wallet...", domain.FormatEther(price))
	progress, err := runWithProgress(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context, send func(tea.Msg)) error {
		stop := followStore(store, send)
		defer stop()

		var submitErr error
		hash, submitErr = rt.controller.Submit(ctx, form)
		return submitErr
	})
	if progress.txHash != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent: %s\n", domain.ExplorerTxURL(progress.txHash))
	}
	if err != nil {
		if hash != "" {
			return fmt.Errorf("update %s: %w", hash, err)
		}
		return err
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "update mined: %s\n", hash); err != nil {
		return err
	}

	rt.controller.HandleArtifactUpdated(cmd.Context())
	return writeSnapshotOutput(cmd, app, store.Snapshot(), billboardrender.RenderOptions{}, false)
}

func bidPrice(raw string, snapshot application.Snapshot) (*big.Int, error) {
	if strings.TrimSpace(raw) != "" {
		return domain.ParseEther(raw)
	}
	if snapshot.ProposedPrice == nil {
		return nil, fmt.Errorf("%w: current price unknown, pass --price", domain.ErrValidation)
	}
	return snapshot.ProposedPrice, nil
}
