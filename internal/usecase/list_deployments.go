package usecase

import (
	"context"
	"sort"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	// Network filter; the configured network is used when empty,
	// and all networks when neither is set
	Network string
	Name    string
	Kind    models.DeploymentKind
}

// DeploymentListResult contains the listed deployments and their summary
type DeploymentListResult struct {
	Deployments []*models.Deployment
	Summary     DeploymentSummary
}

// DeploymentSummary counts the listed deployments
type DeploymentSummary struct {
	Total     int
	ByNetwork map[string]int
	ByKind    map[models.DeploymentKind]int
}

// ListDeployments is the use case for listing deployments
type ListDeployments struct {
	config *config.RuntimeConfig
	repo   DeploymentRepository
	sink   ProgressSink
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository, sink ProgressSink) *ListDeployments {
	return &ListDeployments{
		config: cfg,
		repo:   repo,
		sink:   sink,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageLoading,
		Message: "Loading deployments",
		Spinner: true,
	})

	filter := domain.DeploymentFilter{
		Network: params.Network,
		Name:    params.Name,
		Kind:    params.Kind,
	}
	if filter.Network == "" && uc.config.Network != nil {
		filter.Network = uc.config.Network.Name
	}

	deployments, err := uc.repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortDeployments(deployments)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageCompleted,
		Current: len(deployments),
		Total:   len(deployments),
		Message: "Deployments loaded",
	})

	return &DeploymentListResult{
		Deployments: deployments,
		Summary:     calculateSummary(deployments),
	}, nil
}

// sortDeployments sorts deployments by network, then name
func sortDeployments(deployments []*models.Deployment) {
	sort.SliceStable(deployments, func(i, j int) bool {
		if deployments[i].Network != deployments[j].Network {
			return deployments[i].Network < deployments[j].Network
		}
		return deployments[i].Name < deployments[j].Name
	})
}

func calculateSummary(deployments []*models.Deployment) DeploymentSummary {
	summary := DeploymentSummary{
		Total:     len(deployments),
		ByNetwork: make(map[string]int),
		ByKind:    make(map[models.DeploymentKind]int),
	}
	for _, dep := range deployments {
		summary.ByNetwork[dep.Network]++
		summary.ByKind[dep.Kind]++
	}
	return summary
}
