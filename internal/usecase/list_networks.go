package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

const probeTimeout = 5 * time.Second

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Probe asks each RPC endpoint for its chain ID
	Probe bool
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
	Current  string // network selected by flag or local config
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name          string
	ChainID       uint64
	RPCURL        string
	Live          bool
	RemoteChainID uint64 // set when probed
	Deployments   int
	Error         error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	config   *config.RuntimeConfig
	resolver NetworkResolver
	prober   ChainProber
	repo     DeploymentRepository
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig, resolver NetworkResolver, prober ChainProber, repo DeploymentRepository) *ListNetworks {
	return &ListNetworks{
		config:   cfg,
		resolver: resolver,
		prober:   prober,
		repo:     repo,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	names := uc.resolver.GetNetworks(ctx)

	networks := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		status := NetworkStatus{Name: name}

		info, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			status.Error = err
			networks = append(networks, status)
			continue
		}
		status.ChainID = info.ChainID
		status.RPCURL = info.RPCURL
		status.Live = info.Live

		deployments, err := uc.repo.ListDeployments(ctx, domain.DeploymentFilter{Network: name})
		if err != nil {
			return nil, err
		}
		status.Deployments = len(deployments)

		if params.Probe {
			status.RemoteChainID, status.Error = uc.probe(ctx, info)
		}
		networks = append(networks, status)
	}

	result := &ListNetworksResult{Networks: networks}
	if uc.config.Network != nil {
		result.Current = uc.config.Network.Name
	}
	return result, nil
}

func (uc *ListNetworks) probe(ctx context.Context, network *domain.Network) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	chainID, err := uc.prober.ProbeChainID(ctx, network.RPCURL)
	if err != nil {
		return 0, err
	}
	if network.ChainID != 0 && chainID != network.ChainID {
		return chainID, fmt.Errorf("%w: configured chain %d, RPC returned %d", domain.ErrNetworkMismatch, network.ChainID, chainID)
	}
	return chainID, nil
}
