package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the wallet connection",
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
			remote, hasRemote := rt.sessions.RemoteSession()

			if asJSON {
				out := statusOutput{Connected: !current.Account.Empty()}
				if out.Connected {
					out.Wallet = &walletOutput{
						Account: string(current.Account),
						Channel: string(current.Channel),
						ChainID: current.ChainID,
					}
				}
				if hasRemote {
					out.PeerName = remote.PeerName
					out.Topic = remote.Topic
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			return writeConnection(cmd.OutOrStdout(), current, remote, hasRemote)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type statusOutput struct {
	Connected bool          `json:"connected"`
	Wallet    *walletOutput `json:"wallet,omitempty"`
	PeerName  string        `json:"peer_name,omitempty"`
	Topic     string        `json:"topic,omitempty"`
}

func writeConnection(w io.Writer, current domain.ConnectivityEvent, remote domain.RemoteSession, hasRemote bool) error {
	if current.Account.Empty() {
		_, err := fmt.Fprintln(w, "wallet: not connected")
		return err
	}

	if _, err := fmt.Fprintf(w, "wallet: %s (%s)\n", current.Account, current.Channel.Label()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "chain: %d\n", current.ChainID); err != nil {
		return err
	}
	if hasRemote && remote.PeerName != "" {
		if _, err := fmt.Fprintf(w, "peer: %s\n", remote.PeerName); err != nil {
			return err
		}
	}
	return nil
}
