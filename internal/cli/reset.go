package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the deployment records of the current network",
		Long: `Delete every record under deployments/<network>/ for the selected network,
so the next deploy starts fresh. Contracts on chain are not affected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			renderer := render.NewResetRenderer(cmd.OutOrStdout())

			plan, err := app.ResetDeployments.Run(cmd.Context(), usecase.ResetDeploymentsParams{DryRun: true})
			if err != nil {
				return err
			}
			if len(plan.Deleted) == 0 || !yes {
				if err := renderer.Render(plan); err != nil {
					return err
				}
				if len(plan.Deleted) == 0 {
					return nil
				}
			}

			if !yes {
				ok, err := app.Confirmer.Confirm(cmd.Context(),
					fmt.Sprintf("Delete %d record(s) from %s", len(plan.Deleted), plan.Network))
				if err != nil {
					return err
				}
				if !ok {
					return domain.ErrAborted
				}
			}

			result, err := app.ResetDeployments.Run(cmd.Context(), usecase.ResetDeploymentsParams{})
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
