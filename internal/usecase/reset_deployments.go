package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// ResetDeploymentsParams contains parameters for resetting deployments
type ResetDeploymentsParams struct {
	DryRun bool // only collect the records that would be deleted
}

// ResetDeploymentsResult contains the records removed from the network
type ResetDeploymentsResult struct {
	Network string
	Deleted []*models.Deployment
	DryRun  bool
}

// ResetDeployments deletes every deployment record of the configured network
type ResetDeployments struct {
	config *config.RuntimeConfig
	repo   DeploymentRepository
}

// NewResetDeployments creates a new ResetDeployments use case
func NewResetDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository) *ResetDeployments {
	return &ResetDeployments{
		config: cfg,
		repo:   repo,
	}
}

// Run executes the reset
func (uc *ResetDeployments) Run(ctx context.Context, params ResetDeploymentsParams) (*ResetDeploymentsResult, error) {
	if uc.config.Network == nil {
		return nil, domain.ErrNetworkRequired
	}
	network := uc.config.Network.Name

	deployments, err := uc.repo.ListDeployments(ctx, domain.DeploymentFilter{Network: network})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	sortDeployments(deployments)

	result := &ResetDeploymentsResult{Network: network, Deleted: deployments, DryRun: params.DryRun}
	if params.DryRun {
		return result, nil
	}

	for _, dep := range deployments {
		if err := uc.repo.DeleteDeployment(ctx, network, dep.Name); err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", dep.Name, err)
		}
	}
	return result, nil
}
