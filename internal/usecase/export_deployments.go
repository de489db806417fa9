package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// ExportDeploymentsParams contains parameters for exporting deployments
type ExportDeploymentsParams struct {
	Network string // defaults to the configured network
	Output  string // file path; empty leaves writing to the caller
}

// ExportDeploymentsResult contains the exported network summary
type ExportDeploymentsResult struct {
	Export *models.Export
	Path   string // set when written to a file
}

// ExportDeployments writes the address and ABI of every deployment on a
// network, in the format frontends load
type ExportDeployments struct {
	config *config.RuntimeConfig
	repo   DeploymentRepository
}

// NewExportDeployments creates a new ExportDeployments use case
func NewExportDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository) *ExportDeployments {
	return &ExportDeployments{
		config: cfg,
		repo:   repo,
	}
}

// Run executes the export
func (uc *ExportDeployments) Run(ctx context.Context, params ExportDeploymentsParams) (*ExportDeploymentsResult, error) {
	network := params.Network
	if network == "" {
		if uc.config.Network == nil {
			return nil, domain.ErrNetworkRequired
		}
		network = uc.config.Network.Name
	}

	export, err := uc.repo.Export(ctx, network)
	if err != nil {
		return nil, err
	}

	result := &ExportDeploymentsResult{Export: export}
	if params.Output == "" {
		return result, nil
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(params.Output), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(params.Output, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", params.Output, err)
	}
	result.Path = params.Output
	return result, nil
}
