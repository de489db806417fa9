package deployments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

const (
	// ChainIDFile pins a network directory to its chain
	ChainIDFile = ".chainId"
	// SolcInputsDir holds hardhat-deploy compiler inputs and is not a record
	SolcInputsDir = "solcInputs"
)

// FileRepository stores deployments as deployments/<network>/<Name>.json
type FileRepository struct {
	rootDir string
	mu      sync.RWMutex
	log     *slog.Logger
	now     func() time.Time
}

// NewFileRepository creates a repository rooted at the configured deployments directory
func NewFileRepository(cfg *config.RuntimeConfig, log *slog.Logger) *FileRepository {
	return &FileRepository{
		rootDir: cfg.DeploymentsDir,
		log:     log.With("component", "deployments"),
		now:     time.Now,
	}
}

// GetDeployment retrieves a deployment by network and name
func (r *FileRepository) GetDeployment(ctx context.Context, network, name string) (*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load(network, name)
}

// GetDeploymentByAddress retrieves the first record, by name, deployed at the address
func (r *FileRepository) GetDeploymentByAddress(ctx context.Context, network, address string) (*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deployments, err := r.loadNetwork(network)
	if err != nil {
		return nil, err
	}
	for _, dep := range deployments {
		if strings.EqualFold(dep.Address, address) {
			return dep, nil
		}
	}
	return nil, fmt.Errorf("%w: no deployment at %s on %s", domain.ErrNotFound, address, network)
}

// ListDeployments returns every record matching the filter, sorted by network then name
func (r *FileRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	networks := []string{filter.Network}
	if filter.Network == "" {
		var err error
		if networks, err = r.networks(); err != nil {
			return nil, err
		}
	}

	var result []*models.Deployment
	for _, network := range networks {
		deployments, err := r.loadNetwork(network)
		if err != nil {
			return nil, err
		}
		for _, dep := range deployments {
			if filter.Name != "" && dep.Name != filter.Name {
				continue
			}
			if filter.Kind != "" && dep.Kind != filter.Kind {
				continue
			}
			result = append(result, dep)
		}
	}
	return result, nil
}

// SaveDeployment writes the record, pinning the network directory to the record's chain
func (r *FileRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	if deployment.Network == "" || deployment.Name == "" {
		return fmt.Errorf("deployment record needs a network and a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.rootDir, deployment.Network)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := r.pinChainID(deployment.Network, deployment.ChainID); err != nil {
		return err
	}

	now := r.now().UTC()
	existing, err := r.load(deployment.Network, deployment.Name)
	switch {
	case err == nil:
		deployment.CreatedAt = existing.CreatedAt
		deployment.NumDeployments = existing.NumDeployments
		if existing.TransactionHash != deployment.TransactionHash {
			deployment.NumDeployments++
		}
	case errors.Is(err, domain.ErrNotFound):
		if deployment.CreatedAt.IsZero() {
			deployment.CreatedAt = now
		}
		if deployment.NumDeployments == 0 {
			deployment.NumDeployments = 1
		}
	default:
		return err
	}
	deployment.UpdatedAt = now
	if deployment.Verification.Status == "" {
		deployment.Verification.Status = models.VerificationStatusUnverified
	}

	data, err := json.MarshalIndent(deployment, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", deployment.Name, err)
	}

	if err := writeFileAtomic(filepath.Join(dir, deployment.Name+".json"), data); err != nil {
		return fmt.Errorf("failed to save %s: %w", deployment.Name, err)
	}
	r.log.Debug("saved deployment", "network", deployment.Network, "name", deployment.Name, "address", deployment.Address)
	return nil
}

// DeleteDeployment removes a record
func (r *FileRepository) DeleteDeployment(ctx context.Context, network, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.recordPath(network, name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: deployment %s on %s", domain.ErrNotFound, name, network)
	}
	return err
}

// ListNetworks returns the networks that have a deployments directory
func (r *FileRepository) ListNetworks(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.networks()
}

// ChainID returns the chain a network directory is pinned to
func (r *FileRepository) ChainID(ctx context.Context, network string) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.readChainID(network)
}

// Export builds the hardhat-deploy export document for a network
func (r *FileRepository) Export(ctx context.Context, network string) (*models.Export, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chainID, err := r.readChainID(network)
	if err != nil {
		return nil, err
	}
	deployments, err := r.loadNetwork(network)
	if err != nil {
		return nil, err
	}

	export := &models.Export{
		Name:      network,
		ChainID:   strconv.FormatUint(chainID, 10),
		Contracts: make(map[string]models.ExportedContract, len(deployments)),
	}
	for _, dep := range deployments {
		export.Contracts[dep.Name] = models.ExportedContract{Address: dep.Address, ABI: dep.ABI}
	}
	return export, nil
}

func (r *FileRepository) recordPath(network, name string) string {
	return filepath.Join(r.rootDir, network, name+".json")
}

func (r *FileRepository) load(network, name string) (*models.Deployment, error) {
	data, err := os.ReadFile(r.recordPath(network, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: deployment %s on %s", domain.ErrNotFound, name, network)
	}
	if err != nil {
		return nil, err
	}

	var dep models.Deployment
	if err := json.Unmarshal(data, &dep); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.recordPath(network, name), err)
	}
	dep.Name = name
	dep.Network = network
	if chainID, err := r.readChainID(network); err == nil {
		dep.ChainID = chainID
	}
	if dep.Kind == "" {
		// records written by hardhat-deploy carry no kind
		dep.Kind = models.SingletonDeployment
		if dep.Implementation != "" {
			dep.Kind = models.ProxyDeployment
		}
	}
	return &dep, nil
}

func (r *FileRepository) loadNetwork(network string) ([]*models.Deployment, error) {
	entries, err := os.ReadDir(filepath.Join(r.rootDir, network))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var deployments []*models.Deployment
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		dep, err := r.load(network, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		deployments = append(deployments, dep)
	}
	sort.Slice(deployments, func(i, j int) bool { return deployments[i].Name < deployments[j].Name })
	return deployments, nil
}

func (r *FileRepository) networks() ([]string, error) {
	entries, err := os.ReadDir(r.rootDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var networks []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == SolcInputsDir || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		networks = append(networks, entry.Name())
	}
	sort.Strings(networks)
	return networks, nil
}

func (r *FileRepository) readChainID(network string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(r.rootDir, network, ChainIDFile))
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: no deployments for %s", domain.ErrNotFound, network)
	}
	if err != nil {
		return 0, err
	}
	chainID, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s for %s: %w", ChainIDFile, network, err)
	}
	return chainID, nil
}

func (r *FileRepository) pinChainID(network string, chainID uint64) error {
	pinned, err := r.readChainID(network)
	switch {
	case err == nil:
		if pinned != chainID {
			return fmt.Errorf("%w: deployments/%s holds chain %d, network is chain %d",
				domain.ErrNetworkMismatch, network, pinned, chainID)
		}
		return nil
	case errors.Is(err, domain.ErrNotFound):
		path := filepath.Join(r.rootDir, network, ChainIDFile)
		return writeFileAtomic(path, []byte(strconv.FormatUint(chainID, 10)))
	default:
		return err
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

var _ usecase.DeploymentRepository = (*FileRepository)(nil)
