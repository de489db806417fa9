package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

const maxSuggestions = 3

// ShowDeploymentParams contains parameters for showing a deployment
type ShowDeploymentParams struct {
	// Reference is a deployment name or address; when empty the user picks one
	Reference string
	// Resolve the implementation record of proxied deployments
	ResolveProxy bool
}

// ShowDeploymentResult is a deployment plus its related records
type ShowDeploymentResult struct {
	Deployment     *models.Deployment
	Implementation *models.Deployment // nil unless ResolveProxy found it
	ProxyContract  *models.Deployment
}

// ShowDeployment is the use case for showing deployment details
type ShowDeployment struct {
	config   *config.RuntimeConfig
	repo     DeploymentRepository
	selector DeploymentSelector
	sink     ProgressSink
}

// NewShowDeployment creates a new ShowDeployment use case
func NewShowDeployment(cfg *config.RuntimeConfig, repo DeploymentRepository, selector DeploymentSelector, sink ProgressSink) *ShowDeployment {
	return &ShowDeployment{
		config:   cfg,
		repo:     repo,
		selector: selector,
		sink:     sink,
	}
}

// Run executes the show deployment use case
func (uc *ShowDeployment) Run(ctx context.Context, params ShowDeploymentParams) (*ShowDeploymentResult, error) {
	if uc.config.Network == nil {
		return nil, domain.ErrNetworkRequired
	}
	network := uc.config.Network.Name

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageLoading,
		Message: "Loading deployment details",
		Spinner: true,
	})

	deployment, err := uc.resolve(ctx, network, params.Reference)
	if err != nil {
		return nil, err
	}

	result := &ShowDeploymentResult{Deployment: deployment}
	if params.ResolveProxy && deployment.IsProxy() {
		if impl, err := uc.repo.GetDeployment(ctx, network, models.ImplementationName(deployment.Name)); err == nil {
			result.Implementation = impl
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if proxy, err := uc.repo.GetDeployment(ctx, network, models.ProxyName(deployment.Name)); err == nil {
			result.ProxyContract = proxy
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageCompleted,
		Message: "Deployment loaded",
	})
	return result, nil
}

func (uc *ShowDeployment) resolve(ctx context.Context, network, ref string) (*models.Deployment, error) {
	if ref == "" {
		if uc.config.NonInteractive {
			return nil, fmt.Errorf("a deployment name or address is required in non-interactive mode")
		}
		all, err := uc.repo.ListDeployments(ctx, domain.DeploymentFilter{Network: network})
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("no deployments on %s", network)
		}
		sortDeployments(all)
		return uc.selector.SelectDeployment(ctx, all, "Select deployment")
	}

	if common.IsHexAddress(ref) {
		return uc.repo.GetDeploymentByAddress(ctx, network, ref)
	}

	deployment, err := uc.repo.GetDeployment(ctx, network, ref)
	if !errors.Is(err, domain.ErrNotFound) {
		return deployment, err
	}

	all, listErr := uc.repo.ListDeployments(ctx, domain.DeploymentFilter{Network: network})
	if listErr != nil {
		return nil, listErr
	}
	suggestions := suggestNames(ref, all)
	if len(suggestions) > 0 && !uc.config.NonInteractive {
		return uc.selector.SelectDeployment(ctx, byName(all, suggestions), fmt.Sprintf("%q not found, did you mean", ref))
	}
	return nil, domain.DeploymentNotFoundErr{
		Reference:   ref,
		Network:     network,
		Suggestions: suggestions,
	}
}

func byName(deployments []*models.Deployment, names []string) []*models.Deployment {
	index := make(map[string]*models.Deployment, len(deployments))
	for _, dep := range deployments {
		index[dep.Name] = dep
	}
	out := make([]*models.Deployment, 0, len(names))
	for _, name := range names {
		out = append(out, index[name])
	}
	return out
}

// suggestNames returns the closest deployment names for a mistyped reference
func suggestNames(ref string, deployments []*models.Deployment) []string {
	names := make([]string, len(deployments))
	for i, dep := range deployments {
		names[i] = dep.Name
	}

	var suggestions []string
	for _, match := range fuzzy.Find(ref, names) {
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
