package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [deployment]",
		Short: "Show a deployment record",
		Long: `Show detailed information about one deployment on the selected network.

The deployment can be given by record name ("EventContract",
"EventContract_Implementation") or by address. Without an argument an
interactive picker is shown.`,
		Example: `  mangonel show EventContract --network sst
  mangonel show 0x1234567890abcdef1234567890abcdef12345678 --network sst`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ShowDeploymentParams{ResolveProxy: true}
			if len(args) == 1 {
				params.Reference = args[0]
			}

			result, err := app.ShowDeployment.Run(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to resolve deployment: %w", err)
			}

			if app.Config.JSON {
				data, err := json.MarshalIndent(result.Deployment, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewDeploymentRenderer(cmd.OutOrStdout(), !isNonInteractive(cmd))
			return renderer.RenderDeployment(result)
		},
	}

	return cmd
}
