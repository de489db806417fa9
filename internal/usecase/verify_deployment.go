package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// VerifyDeployment handles contract verification on block explorers
type VerifyDeployment struct {
	config    *config.RuntimeConfig
	repo      DeploymentRepository
	artifacts ArtifactRepository
	verifier  ContractVerifier
	sink      ProgressSink
}

// NewVerifyDeployment creates a new verify deployment use case
func NewVerifyDeployment(
	cfg *config.RuntimeConfig,
	repo DeploymentRepository,
	artifacts ArtifactRepository,
	verifier ContractVerifier,
	sink ProgressSink,
) *VerifyDeployment {
	return &VerifyDeployment{
		config:    cfg,
		repo:      repo,
		artifacts: artifacts,
		verifier:  verifier,
		sink:      sink,
	}
}

// VerifyOptions contains options for verification
type VerifyOptions struct {
	Force bool // re-verify even if already verified
}

// VerifyResult contains the result of verifying one record
type VerifyResult struct {
	Deployment *models.Deployment
	Success    bool
	Errors     []string
}

// VerifyAllResult contains the result of verifying all deployments on a network
type VerifyAllResult struct {
	Results      []*VerifyResult
	Skipped      []*SkippedDeployment
	SuccessCount int
}

// SkippedDeployment represents a deployment that was skipped
type SkippedDeployment struct {
	Deployment *models.Deployment
	Reason     string
}

// VerifyAll verifies every deployed contract on the configured network.
// Proxied deployments are verified through their implementation and proxy records.
func (v *VerifyDeployment) VerifyAll(ctx context.Context, options VerifyOptions) (*VerifyAllResult, error) {
	network, err := v.network()
	if err != nil {
		return nil, err
	}

	deployments, err := v.repo.ListDeployments(ctx, domain.DeploymentFilter{Network: network.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	sortDeployments(deployments)

	result := &VerifyAllResult{}
	var proxies []*models.Deployment
	var toVerify []*models.Deployment
	for _, dep := range deployments {
		switch {
		case dep.Kind == models.ProxyDeployment:
			proxies = append(proxies, dep)
		case dep.TransactionHash == "":
			result.Skipped = append(result.Skipped, &SkippedDeployment{Deployment: dep, Reason: "No transaction hash"})
		case !options.Force && dep.Verification.Status == models.VerificationStatusVerified:
			result.Skipped = append(result.Skipped, &SkippedDeployment{Deployment: dep, Reason: "Already verified"})
		default:
			toVerify = append(toVerify, dep)
		}
	}

	if network.IsLocal() {
		for _, dep := range toVerify {
			result.Skipped = append(result.Skipped, &SkippedDeployment{Deployment: dep, Reason: "Local chain"})
		}
		return result, nil
	}

	for i, dep := range toVerify {
		v.sink.OnProgress(ctx, ProgressEvent{
			Stage:   StageVerifying,
			Current: i + 1,
			Total:   len(toVerify),
			Message: fmt.Sprintf("Verifying %s", dep.Name),
			Spinner: true,
		})
		res := v.verifyRecord(ctx, dep, network)
		result.Results = append(result.Results, res)
		if res.Success {
			result.SuccessCount++
		}
	}

	for _, proxy := range proxies {
		if err := v.syncProxyStatus(ctx, proxy); err != nil {
			return result, err
		}
	}

	v.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageCompleted,
		Message: fmt.Sprintf("Verified %d/%d", result.SuccessCount, len(toVerify)),
	})
	return result, nil
}

// VerifySpecific verifies one deployment by name or address. A proxied
// deployment verifies both its implementation and its proxy contract.
func (v *VerifyDeployment) VerifySpecific(ctx context.Context, identifier string, options VerifyOptions) ([]*VerifyResult, error) {
	network, err := v.network()
	if err != nil {
		return nil, err
	}

	var deployment *models.Deployment
	if common.IsHexAddress(identifier) {
		deployment, err = v.repo.GetDeploymentByAddress(ctx, network.Name, identifier)
	} else {
		deployment, err = v.repo.GetDeployment(ctx, network.Name, identifier)
	}
	if err != nil {
		return nil, err
	}
	if network.IsLocal() {
		return nil, fmt.Errorf("%s is on a local chain, nothing to verify", deployment.Name)
	}

	targets := []*models.Deployment{deployment}
	if deployment.Kind == models.ProxyDeployment {
		targets = nil
		for _, name := range []string{models.ImplementationName(deployment.Name), models.ProxyName(deployment.Name)} {
			dep, err := v.repo.GetDeployment(ctx, network.Name, name)
			if err != nil {
				return nil, err
			}
			targets = append(targets, dep)
		}
	}

	var results []*VerifyResult
	for _, dep := range targets {
		if !options.Force && dep.Verification.Status == models.VerificationStatusVerified {
			results = append(results, &VerifyResult{
				Deployment: dep,
				Success:    true,
				Errors:     []string{"Already verified. Use --force to re-verify."},
			})
			continue
		}
		v.sink.OnProgress(ctx, ProgressEvent{
			Stage:   StageVerifying,
			Message: fmt.Sprintf("Verifying %s", dep.Name),
			Spinner: true,
		})
		results = append(results, v.verifyRecord(ctx, dep, network))
	}

	if deployment.Kind == models.ProxyDeployment {
		if err := v.syncProxyStatus(ctx, deployment); err != nil {
			return results, err
		}
	}
	return results, nil
}

// verifyRecord submits one record and stores the outcome in it
func (v *VerifyDeployment) verifyRecord(ctx context.Context, dep *models.Deployment, network *domain.Network) *VerifyResult {
	artifact, err := v.artifacts.GetArtifact(ctx, dep.ContractName)
	if err != nil {
		return &VerifyResult{Deployment: dep, Errors: []string{fmt.Sprintf("failed to load artifact: %v", err)}}
	}

	info, verifyErr := v.verifier.Verify(ctx, dep, artifact, network)
	if info != nil {
		dep.Verification = *info
		if err := v.repo.SaveDeployment(ctx, dep); err != nil {
			return &VerifyResult{Deployment: dep, Errors: []string{fmt.Sprintf("failed to update record: %v", err)}}
		}
	}
	if verifyErr != nil {
		return &VerifyResult{Deployment: dep, Errors: []string{verifyErr.Error()}}
	}
	return &VerifyResult{Deployment: dep, Success: true}
}

// syncProxyStatus copies the implementation's verification onto the proxied record
func (v *VerifyDeployment) syncProxyStatus(ctx context.Context, proxy *models.Deployment) error {
	impl, err := v.repo.GetDeployment(ctx, proxy.Network, models.ImplementationName(proxy.Name))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if impl.Verification.Status == proxy.Verification.Status && impl.Verification.URL == proxy.Verification.URL {
		return nil
	}
	proxy.Verification = impl.Verification
	return v.repo.SaveDeployment(ctx, proxy)
}

func (v *VerifyDeployment) network() (*domain.Network, error) {
	if v.config.Network == nil {
		return nil, domain.ErrNetworkRequired
	}
	return v.config.Network, nil
}
