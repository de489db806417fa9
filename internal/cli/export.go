package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export addresses and ABIs of a network's deployments",
		Long: `Print (or write with --output) a JSON document with the chain ID and
the address and ABI of every deployment on the network, ready to be loaded
by a frontend.`,
		Example: `  mangonel export --network sst
  mangonel export --network sst --output frontend/src/deployments.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ExportDeployments.Run(cmd.Context(), usecase.ExportDeploymentsParams{
				Output: output,
			})
			if err != nil {
				return err
			}

			if result.Path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf(
					"Exported %d deployment(s) to %s", len(result.Export.Contracts), result.Path)))
				return nil
			}

			data, err := json.MarshalIndent(result.Export, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the export to this file")

	return cmd
}
