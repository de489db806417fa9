package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		tags        []string
		reset       bool
		dryRun      bool
		skipCompile bool
		selectFlag  bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run the deploy scripts against a network",
		Long: `Compile the contracts, then run every deploy script in the deploy
directory in dependency order. Contracts whose bytecode and arguments match
the saved record are reused; the rest are deployed and recorded under
deployments/<network>/.`,
		Example: `  # Deploy everything to Scroll Sepolia
  mangonel deploy --network sst

  # Only scripts tagged EventContract, without sending transactions
  mangonel deploy --network sst --tags EventContract --dry-run

  # Redeploy even when a matching record exists
  mangonel deploy --network sst --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RunDeploy.Run(cmd.Context(), usecase.RunDeployParams{
				Tags:        app.Config.Tags,
				Reset:       reset,
				DryRun:      dryRun,
				SkipCompile: skipCompile,
				Select:      selectFlag,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewDeployRenderer(cmd.OutOrStdout(), verbose || app.Config.Debug)
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Only run scripts carrying these tags (comma separated)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Deploy again even when a matching record exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the deployments without sending transactions")
	cmd.Flags().BoolVar(&skipCompile, "skip-compile", false, "Use existing build artifacts")
	cmd.Flags().BoolVar(&selectFlag, "select", false, "Pick the scripts to run interactively")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show transaction hashes")

	return cmd
}
