package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/billboard-cli/internal/version"
	"github.com/spf13/cobra"
)

type versionOutput struct {
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
	ChainID  uint64 `json:"chain_id"`
}

func newVersionCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build and the billboard deployment it targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := versionOutput{
				Version:  version.Version,
				Commit:   version.Commit,
				Contract: app.settings.ContractAddress,
				ChainID:  app.settings.ChainID,
			}
			if app.settings.TokenID != nil {
				out.TokenID = app.settings.TokenID.String()
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\ncontract: %s token %s on chain %d\n", version.Build(), out.Contract, out.TokenID, out.ChainID)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
