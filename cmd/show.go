package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"

	billboardrender "github.com/bnema/billboard-cli/internal/adapters/render/billboard"
	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newShowCmd(app *app) *cobra.Command {
	var asJSON bool
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current billboard and its price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, loadErr := loadSnapshot(cmd, app)
			if snapshot == nil {
				return loadErr
			}

			if err := writeSnapshotOutput(cmd, app, *snapshot, billboardrender.RenderOptions{ShowHistory: withHistory}, asJSON); err != nil {
				return err
			}
			if snapshot.Artifact == nil && loadErr != nil {
				return fmt.Errorf("load billboard: %w", loadErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&withHistory, "history", false, "Include previous billboards")

	return cmd
}

func newHistoryCmd(app *app) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List every billboard update, highest bid first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			snapshot, loadErr := loadSnapshot(cmd, app)
			if snapshot == nil {
				return loadErr
			}
			if len(snapshot.History) == 0 && snapshot.LastError != nil {
				return fmt.Errorf("load billboard history: %w", snapshot.LastError)
			}

			return writeSnapshotOutput(cmd, app, *snapshot, billboardrender.RenderOptions{HistoryOnly: true, Limit: limit}, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of previous billboards to list (0: all)")

	return cmd
}

// loadSnapshot runs one full sync and returns the resulting state. A nil
// snapshot means nothing could be wired; a non-nil error alongside a
// snapshot reports a failed read.
func loadSnapshot(cmd *cobra.Command, app *app) (*application.Snapshot, error) {
	rt, err := app.newRuntime(cmd.Context(), runtimeOptions{})
	if err != nil {
		return nil, err
	}
	defer rt.close()

	initErr := rt.controller.Init(cmd.Context())
	if initErr != nil {
		app.logger.Warn("billboard sync incomplete", "err", initErr)
	}

	snapshot := rt.controller.Store().Snapshot()
	return &snapshot, initErr
}

func writeSnapshotOutput(cmd *cobra.Command, app *app, snapshot application.Snapshot, opts billboardrender.RenderOptions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if opts.HistoryOnly {
			return enc.Encode(historyJSON(snapshot, opts.Limit))
		}
		return enc.Encode(snapshotJSON(snapshot))
	}

	rendered, err := app.renderer(snapshot, opts)
	if err != nil {
		return fmt.Errorf("render billboard: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

type billboardOutput struct {
	Phase         string         `json:"phase"`
	Name          string         `json:"name,omitempty"`
	Lines         []string       `json:"lines"`
	PriceWei      string         `json:"price_wei,omitempty"`
	PriceEther    string         `json:"price_ether,omitempty"`
	NextBidWei    string         `json:"next_bid_wei,omitempty"`
	TxHash        string         `json:"tx_hash,omitempty"`
	ExplorerURL   string         `json:"explorer_url,omitempty"`
	Wallet        *walletOutput  `json:"wallet,omitempty"`
	PendingTxHash string         `json:"pending_tx_hash,omitempty"`
	Error         string         `json:"error,omitempty"`
	History       []updateOutput `json:"history,omitempty"`
}

type walletOutput struct {
	Account string `json:"account"`
	Channel string `json:"channel"`
	ChainID uint64 `json:"chain_id"`
}

type updateOutput struct {
	PriceWei    string `json:"price_wei"`
	PriceEther  string `json:"price_ether"`
	Text        string `json:"text"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

type historyOutput struct {
	Current  *updateOutput  `json:"current"`
	Previous []updateOutput `json:"previous"`
	Total    int            `json:"total"`
}

func snapshotJSON(snapshot application.Snapshot) billboardOutput {
	out := billboardOutput{
		Phase: string(snapshot.Phase),
		Lines: []string{},
	}

	if artifact := snapshot.Artifact; artifact != nil {
		out.Name = artifact.Name
		out.Lines = append(out.Lines, artifact.Lines...)
		out.PriceWei = weiString(artifact.Price)
		if artifact.Price != nil {
			out.PriceEther = domain.FormatEther(artifact.Price)
		}
		out.TxHash = artifact.TxHash
		out.ExplorerURL = domain.ExplorerTxURL(artifact.TxHash)
	}
	out.NextBidWei = weiString(snapshot.ProposedPrice)

	if snapshot.Connected() {
		out.Wallet = &walletOutput{
			Account: string(snapshot.Account),
			Channel: string(snapshot.Channel),
			ChainID: snapshot.ChainID,
		}
	}
	out.PendingTxHash = snapshot.PendingTxHash
	if snapshot.LastError != nil {
		out.Error = snapshot.LastError.Error()
	}

	for _, record := range snapshot.History {
		out.History = append(out.History, toUpdateOutput(record))
	}

	return out
}

func historyJSON(snapshot application.Snapshot, limit int) historyOutput {
	current, previous := snapshot.Ranked()
	if limit > 0 && len(previous) > limit {
		previous = previous[:limit]
	}

	out := historyOutput{Previous: []updateOutput{}, Total: len(snapshot.History)}
	if current != nil {
		first := toUpdateOutput(*current)
		out.Current = &first
	}
	for _, record := range previous {
		out.Previous = append(out.Previous, toUpdateOutput(record))
	}
	return out
}

func toUpdateOutput(record domain.UpdateRecord) updateOutput {
	return updateOutput{
		PriceWei:    weiString(record.Price),
		PriceEther:  domain.FormatEther(record.Price),
		Text:        record.Text,
		TxHash:      record.TxHash,
		BlockNumber: record.BlockNumber,
	}
}

func weiString(wei *big.Int) string {
	if wei == nil {
		return ""
	}
	return wei.String()
}
