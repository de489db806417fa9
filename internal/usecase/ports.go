package usecase

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// DeploymentRepository handles persistence of deployment records
type DeploymentRepository interface {
	GetDeployment(ctx context.Context, network, name string) (*models.Deployment, error)
	GetDeploymentByAddress(ctx context.Context, network, address string) (*models.Deployment, error)
	ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error)
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	DeleteDeployment(ctx context.Context, network, name string) error
	ListNetworks(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context, network string) (uint64, error)
	Export(ctx context.Context, network string) (*models.Export, error)
}

// ArtifactRepository provides access to compiled contracts
type ArtifactRepository interface {
	// GetArtifact finds an artifact by contract name or "path/File.sol:Name"
	GetArtifact(ctx context.Context, name string) (*models.Artifact, error)
}

// Compiler builds the project's contracts
type Compiler interface {
	Build(ctx context.Context) error
}

// ScriptRepository loads declarative deploy scripts
type ScriptRepository interface {
	LoadScripts(ctx context.Context) ([]*models.DeployScript, error)
	SelectScripts(scripts []*models.DeployScript, tags []string) ([]*models.DeployScript, error)
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*domain.Network, error)
}

// AccountResolver resolves named accounts to signers
type AccountResolver interface {
	ResolveAccount(ctx context.Context, name string, network *domain.Network) (*domain.Signer, error)
}

// AccountLookup resolves an "@name" argument reference to an address
type AccountLookup func(name string) (common.Address, error)

// ABIEncoder turns script values into ABI encoded arguments
type ABIEncoder interface {
	// EncodeConstructor converts raw values against the constructor inputs and packs them
	EncodeConstructor(contractABI *abi.ABI, raw []any, accounts AccountLookup) ([]any, []byte, error)
	// EncodeCall converts raw values against a method's inputs and packs the calldata
	EncodeCall(contractABI *abi.ABI, method string, raw []any, accounts AccountLookup) ([]any, []byte, error)
	// ProxyConstructorArgs returns the constructor arguments of a proxy of the given kind
	ProxyConstructorArgs(kind models.ProxyKind, implementation, owner common.Address, data []byte) []any
	// DisplayArgs turns converted arguments into JSON friendly values for records
	DisplayArgs(args []any) []any
}

// DeployedContract is the outcome of a contract creation transaction
type DeployedContract struct {
	Address common.Address
	TxHash  common.Hash
	Receipt *models.Receipt
	Logs    []*types.Log
}

// ChainClient sends contract creations and reads chain state
type ChainClient interface {
	Connect(ctx context.Context, network *domain.Network) error
	DeployContract(ctx context.Context, signer *domain.Signer, contractABI *abi.ABI, bytecode []byte, args []any) (*DeployedContract, error)
	CodeExists(ctx context.Context, address common.Address) (bool, error)
	Close()
}

// ChainProber queries the chain ID behind an RPC endpoint
type ChainProber interface {
	ProbeChainID(ctx context.Context, rpcURL string) (uint64, error)
}

// ProxyEventParser extracts the admin and implementation a proxy announced on creation
type ProxyEventParser interface {
	ParseProxyEvents(proxy common.Address, logs []*types.Log) *ProxyEvents
}

// ProxyEvents are the ERC1967 events emitted by a proxy constructor
type ProxyEvents struct {
	Implementation *common.Address
	Admin          *common.Address
}

// ContractVerifier handles contract verification on block explorers
type ContractVerifier interface {
	Verify(ctx context.Context, deployment *models.Deployment, artifact *models.Artifact, network *domain.Network) (*models.VerificationInfo, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata any
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Interaction ports

// DeploymentSelector handles interactive selection of deployments
type DeploymentSelector interface {
	SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error)
}

// ScriptSelector lets the user narrow the deploy scripts to run
type ScriptSelector interface {
	SelectScripts(ctx context.Context, scripts []*models.DeployScript) ([]*models.DeployScript, error)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// AnvilManager manages local anvil node instances
type AnvilManager interface {
	Start(ctx context.Context, instance *domain.AnvilInstance) error
	Stop(ctx context.Context, instance *domain.AnvilInstance) error
	GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error)
	StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error
}

// FileWriter writes project files relative to the project root
type FileWriter interface {
	WriteFile(ctx context.Context, path string, content string) error
	FileExists(ctx context.Context, path string) (bool, error)
	EnsureDirectory(ctx context.Context, path string) error
}

// LocalConfigRepository manages local configuration persistence
type LocalConfigRepository interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}
