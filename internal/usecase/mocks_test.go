package usecase_test

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// memRepository is an in-memory DeploymentRepository
type memRepository struct {
	mu      sync.Mutex
	records map[string]map[string]*models.Deployment
	chainID map[string]uint64
	saves   []string
}

func newMemRepository(records ...*models.Deployment) *memRepository {
	r := &memRepository{
		records: make(map[string]map[string]*models.Deployment),
		chainID: make(map[string]uint64),
	}
	for _, rec := range records {
		r.put(rec)
	}
	r.saves = nil
	return r
}

func (r *memRepository) put(d *models.Deployment) {
	if r.records[d.Network] == nil {
		r.records[d.Network] = make(map[string]*models.Deployment)
	}
	cp := *d
	r.records[d.Network][d.Name] = &cp
	r.chainID[d.Network] = d.ChainID
	r.saves = append(r.saves, d.Name)
}

func (r *memRepository) GetDeployment(ctx context.Context, network, name string) (*models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.records[network][name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memRepository) GetDeploymentByAddress(ctx context.Context, network, address string) (*models.Deployment, error) {
	all, _ := r.ListDeployments(ctx, domain.DeploymentFilter{Network: network})
	for _, d := range all {
		if common.HexToAddress(d.Address) == common.HexToAddress(address) {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Deployment
	for network, byName := range r.records {
		if filter.Network != "" && network != filter.Network {
			continue
		}
		for _, d := range byName {
			if filter.Name != "" && d.Name != filter.Name {
				continue
			}
			if filter.Kind != "" && d.Kind != filter.Kind {
				continue
			}
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepository) SaveDeployment(ctx context.Context, d *models.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(d)
	return nil
}

func (r *memRepository) DeleteDeployment(ctx context.Context, network, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records[network], name)
	return nil
}

func (r *memRepository) ListNetworks(ctx context.Context) ([]string, error) {
	var out []string
	for n := range r.records {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memRepository) ChainID(ctx context.Context, network string) (uint64, error) {
	id, ok := r.chainID[network]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (r *memRepository) Export(ctx context.Context, network string) (*models.Export, error) {
	all, _ := r.ListDeployments(ctx, domain.DeploymentFilter{Network: network})
	if len(all) == 0 {
		return nil, domain.ErrNotFound
	}
	export := &models.Export{
		Name:      network,
		ChainID:   strconv.FormatUint(r.chainID[network], 10),
		Contracts: make(map[string]models.ExportedContract),
	}
	for _, d := range all {
		export.Contracts[d.Name] = models.ExportedContract{Address: d.Address, ABI: d.ABI}
	}
	return export, nil
}

// MockArtifactRepository is a mock implementation of ArtifactRepository
type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) GetArtifact(ctx context.Context, name string) (*models.Artifact, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artifact), args.Error(1)
}

// MockCompiler is a mock implementation of Compiler
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Build(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// staticScripts serves a fixed list of scripts
type staticScripts struct {
	scripts []*models.DeployScript
}

func (s *staticScripts) LoadScripts(ctx context.Context) ([]*models.DeployScript, error) {
	return s.scripts, nil
}

func (s *staticScripts) SelectScripts(scripts []*models.DeployScript, tags []string) ([]*models.DeployScript, error) {
	if len(tags) == 0 {
		return scripts, nil
	}
	var out []*models.DeployScript
	for _, script := range scripts {
		if script.HasTag(tags...) {
			out = append(out, script)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNoScriptsMatch
	}
	return out, nil
}

// MockNetworkResolver is a mock implementation of NetworkResolver
type MockNetworkResolver struct {
	mock.Mock
}

func (m *MockNetworkResolver) GetNetworks(ctx context.Context) []string {
	return m.Called(ctx).Get(0).([]string)
}

func (m *MockNetworkResolver) ResolveNetwork(ctx context.Context, name string) (*domain.Network, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Network), args.Error(1)
}

// staticAccounts resolves names from a fixed map
type staticAccounts map[string]*domain.Signer

func (a staticAccounts) ResolveAccount(ctx context.Context, name string, network *domain.Network) (*domain.Signer, error) {
	signer, ok := a[name]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return signer, nil
}

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) Connect(ctx context.Context, network *domain.Network) error {
	return m.Called(ctx, network).Error(0)
}

func (m *MockChainClient) DeployContract(ctx context.Context, signer *domain.Signer, contractABI *abi.ABI, bytecode []byte, args []any) (*usecase.DeployedContract, error) {
	res := m.Called(ctx, signer, contractABI, bytecode, args)
	if res.Get(0) == nil {
		return nil, res.Error(1)
	}
	return res.Get(0).(*usecase.DeployedContract), res.Error(1)
}

func (m *MockChainClient) CodeExists(ctx context.Context, address common.Address) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

func (m *MockChainClient) Close() {
	m.Called()
}

// MockChainProber is a mock implementation of ChainProber
type MockChainProber struct {
	mock.Mock
}

func (m *MockChainProber) ProbeChainID(ctx context.Context, rpcURL string) (uint64, error) {
	args := m.Called(ctx, rpcURL)
	return args.Get(0).(uint64), args.Error(1)
}

// MockContractVerifier is a mock implementation of ContractVerifier
type MockContractVerifier struct {
	mock.Mock
}

func (m *MockContractVerifier) Verify(ctx context.Context, d *models.Deployment, a *models.Artifact, n *domain.Network) (*models.VerificationInfo, error) {
	args := m.Called(ctx, d.Name, a, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationInfo), args.Error(1)
}

// MockDeploymentSelector is a mock implementation of DeploymentSelector
type MockDeploymentSelector struct {
	mock.Mock
}

func (m *MockDeploymentSelector) SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error) {
	args := m.Called(ctx, deployments, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

// MockScriptSelector is a mock implementation of ScriptSelector
type MockScriptSelector struct {
	mock.Mock
}

func (m *MockScriptSelector) SelectScripts(ctx context.Context, scripts []*models.DeployScript) ([]*models.DeployScript, error) {
	args := m.Called(ctx, scripts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeployScript), args.Error(1)
}

// MockConfirmer is a mock implementation of Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// MockAnvilManager is a mock implementation of AnvilManager
type MockAnvilManager struct {
	mock.Mock
}

func (m *MockAnvilManager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockAnvilManager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockAnvilManager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	args := m.Called(ctx, instance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnvilStatus), args.Error(1)
}

func (m *MockAnvilManager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	return m.Called(ctx, instance, writer).Error(0)
}

// memLocalConfig keeps the local config in memory
type memLocalConfig struct {
	cfg    *config.LocalConfig
	exists bool
}

func (s *memLocalConfig) Exists() bool { return s.exists }

func (s *memLocalConfig) Load(ctx context.Context) (*config.LocalConfig, error) {
	if s.cfg == nil {
		return config.DefaultLocalConfig(), nil
	}
	cp := *s.cfg
	return &cp, nil
}

func (s *memLocalConfig) Save(ctx context.Context, cfg *config.LocalConfig) error {
	cp := *cfg
	s.cfg = &cp
	s.exists = true
	return nil
}

func (s *memLocalConfig) GetPath() string { return "/project/.mangonel/config.local.json" }

// MockProgressSink records progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
	infos  []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) { m.infos = append(m.infos, message) }

func (m *MockProgressSink) Error(message string) {}

func (m *MockProgressSink) stages() []string {
	var out []string
	for _, e := range m.events {
		out = append(out, e.Stage)
	}
	return out
}
