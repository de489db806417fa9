package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		name     string
		kindFlag string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded deployments",
		Long: `List the deployment records under deployments/.

Without --network (or a network set through 'mangonel config set network'),
every network is listed.`,
		Example: `  # List everything
  mangonel list

  # List proxied deployments on sst
  mangonel list --network sst --kind proxy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			result, err := app.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
				Name: name,
				Kind: kind,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				data, err := json.MarshalIndent(listJSON(result), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewDeploymentsRenderer(cmd.OutOrStdout(), !isNonInteractive(cmd))
			return renderer.RenderDeploymentList(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filter by deployment name")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Filter by kind (singleton, proxy, implementation, proxy-contract)")

	return cmd
}

// parseKind maps a --kind value to a deployment kind
func parseKind(value string) (models.DeploymentKind, error) {
	switch strings.ToLower(value) {
	case "":
		return "", nil
	case "singleton":
		return models.SingletonDeployment, nil
	case "proxy":
		return models.ProxyDeployment, nil
	case "implementation", "impl":
		return models.ImplementationDeployment, nil
	case "proxy-contract", "proxy_contract":
		return models.ProxyContractDeployment, nil
	default:
		return "", fmt.Errorf("invalid deployment kind: %s (valid: singleton, proxy, implementation, proxy-contract)", value)
	}
}

type listEntry struct {
	Network      string                    `json:"network"`
	ChainID      uint64                    `json:"chainId"`
	Name         string                    `json:"name"`
	Kind         models.DeploymentKind     `json:"kind"`
	ContractName string                    `json:"contractName"`
	Address      string                    `json:"address"`
	Verification models.VerificationStatus `json:"verification"`
}

func listJSON(result *usecase.DeploymentListResult) []listEntry {
	entries := make([]listEntry, 0, len(result.Deployments))
	for _, dep := range result.Deployments {
		entries = append(entries, listEntry{
			Network:      dep.Network,
			ChainID:      dep.ChainID,
			Name:         dep.Name,
			Kind:         dep.Kind,
			ContractName: dep.ContractName,
			Address:      dep.Address,
			Verification: dep.Verification.Status,
		})
	}
	return entries
}
