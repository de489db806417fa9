package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 20
)

// Verifier submits deployments to the network's explorer and waits for the outcome
type Verifier struct {
	projectRoot  string
	etherscan    config.EtherscanConfig
	service      *Service
	log          *slog.Logger
	now          func() time.Time
	pollInterval time.Duration
	maxAttempts  int
}

// NewVerifier creates a verifier for the project's etherscan settings
func NewVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *Verifier {
	v := &Verifier{
		projectRoot:  cfg.ProjectRoot,
		service:      NewService(),
		log:          log.With("component", "verifier"),
		now:          time.Now,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
	}
	if cfg.Project != nil {
		v.etherscan = cfg.Project.Etherscan
	}
	return v
}

// Verify submits the deployment's source and polls until the explorer decides.
// A rejection returns a FAILED result together with an error.
func (v *Verifier) Verify(ctx context.Context, deployment *models.Deployment, artifact *models.Artifact, network *domain.Network) (*models.VerificationInfo, error) {
	endpoint, err := ResolveEndpoint(v.etherscan, network)
	if err != nil {
		return nil, err
	}

	input, err := BuildStandardInput(v.projectRoot, artifact)
	if err != nil {
		return nil, err
	}

	params := VerificationParams{
		Address:         deployment.Address,
		ContractName:    artifact.FullyQualifiedName(),
		StandardInput:   input,
		CompilerVersion: "v" + artifact.FullCompilerVersion(),
		ConstructorArgs: strings.TrimPrefix(deployment.ArgsData, "0x"),
	}
	v.log.Debug("submitting verification", "name", deployment.Name, "address", deployment.Address, "api", endpoint.APIURL)

	guid, err := v.service.Submit(ctx, endpoint, params)
	switch {
	case errors.Is(err, ErrAlreadyVerified):
		return v.verified(endpoint, deployment), nil
	case errors.Is(err, domain.ErrVerificationFailed):
		return v.failed(err), err
	case err != nil:
		return nil, err
	}

	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(v.pollInterval):
		}

		status, err := v.service.CheckStatus(ctx, endpoint, guid)
		if err != nil {
			return nil, err
		}
		v.log.Debug("verification status", "name", deployment.Name, "attempt", attempt, "result", status.Message)

		if status.Pending {
			continue
		}
		if status.Verified {
			return v.verified(endpoint, deployment), nil
		}
		err = fmt.Errorf("%w: %s", domain.ErrVerificationFailed, status.Message)
		return v.failed(err), err
	}

	err = fmt.Errorf("%w: still pending after %d attempts (guid %s)", domain.ErrVerificationFailed, v.maxAttempts, guid)
	return v.failed(err), err
}

func (v *Verifier) verified(endpoint *Endpoint, deployment *models.Deployment) *models.VerificationInfo {
	now := v.now().UTC()
	return &models.VerificationInfo{
		Status:     models.VerificationStatusVerified,
		URL:        endpoint.AddressURL(deployment.Address),
		VerifiedAt: &now,
	}
}

func (v *Verifier) failed(err error) *models.VerificationInfo {
	return &models.VerificationInfo{
		Status: models.VerificationStatusFailed,
		Reason: err.Error(),
	}
}

var _ usecase.ContractVerifier = (*Verifier)(nil)
