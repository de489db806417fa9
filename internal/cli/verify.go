package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		allFlag   bool
		forceFlag bool
	)

	cmd := &cobra.Command{
		Use:   "verify [deployment|address]",
		Short: "Verify contracts on block explorers",
		Long: `Submit deployed contracts to the Etherscan-compatible explorer of the
network and record the outcome in the deployment record.

A proxied deployment is verified through its implementation and proxy
contract records. Local chains are skipped.`,
		Example: `  mangonel verify EventContract --network sst  # Verify one deployment
  mangonel verify --all --network sst          # Verify every unverified contract
  mangonel verify --all --force --network sst  # Re-verify everything`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			options := usecase.VerifyOptions{Force: forceFlag}
			renderer := render.NewVerifyRenderer(cmd.OutOrStdout())
			ctx := cmd.Context()

			if allFlag {
				result, err := app.VerifyDeployment.VerifyAll(ctx, options)
				if err != nil {
					return fmt.Errorf("failed to verify contracts: %w", err)
				}
				if err := renderer.RenderVerifyAllResult(result, options); err != nil {
					return err
				}
				if failed := len(result.Results) - result.SuccessCount; failed > 0 {
					return fmt.Errorf("%d contract(s): %w", failed, domain.ErrVerificationFailed)
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("please provide a deployment name or address, or use --all")
			}

			results, err := app.VerifyDeployment.VerifySpecific(ctx, args[0], options)
			if err != nil {
				return err
			}
			if err := renderer.RenderVerifyResults(results); err != nil {
				return err
			}
			for _, res := range results {
				if !res.Success {
					return fmt.Errorf("%s: %w", res.Deployment.Name, domain.ErrVerificationFailed)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Verify every unverified contract on the network")
	cmd.Flags().BoolVar(&forceFlag, "force", false, "Re-verify even if already verified")

	return cmd
}
