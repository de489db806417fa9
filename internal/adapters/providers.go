package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/mangonel/internal/adapters/abi"
	"github.com/trebuchet-org/mangonel/internal/adapters/anvil"
	"github.com/trebuchet-org/mangonel/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/mangonel/internal/adapters/config"
	"github.com/trebuchet-org/mangonel/internal/adapters/forge"
	"github.com/trebuchet-org/mangonel/internal/adapters/fs"
	"github.com/trebuchet-org/mangonel/internal/adapters/interactive"
	"github.com/trebuchet-org/mangonel/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/mangonel/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/mangonel/internal/adapters/scripts"
	"github.com/trebuchet-org/mangonel/internal/adapters/verification"
	"github.com/trebuchet-org/mangonel/internal/config"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// RepositorySet provides file-backed repositories
var RepositorySet = wire.NewSet(
	deployments.NewFileRepository,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),

	contracts.NewRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*contracts.Repository)),

	scripts.NewLoader,
	wire.Bind(new(usecase.ScriptRepository), new(*scripts.Loader)),
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigRepository), new(*fs.LocalConfigStoreAdapter)),
)

// ForgeSet provides the compiler
var ForgeSet = wire.NewSet(
	forge.NewForgeAdapter,
	wire.Bind(new(usecase.Compiler), new(*forge.ForgeAdapter)),
)

// ABISet provides argument encoding and event decoding
var ABISet = wire.NewSet(
	abi.NewEncoder,
	wire.Bind(new(usecase.ABIEncoder), new(*abi.Encoder)),

	abi.NewEventParser,
	wire.Bind(new(usecase.ProxyEventParser), new(*abi.EventParser)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.DeploymentSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.ScriptSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	config.ProvideAccountResolver,

	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),

	internalconfig.NewAccountResolverAdapter,
	wire.Bind(new(usecase.AccountResolver), new(*internalconfig.AccountResolverAdapter)),
)

// BlockchainSet provides chain access
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
	wire.Bind(new(usecase.ChainProber), new(*blockchain.Client)),
)

// VerificationSet provides block explorer verification
var VerificationSet = wire.NewSet(
	verification.NewVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.Verifier)),
)

// AnvilSet provides local node management
var AnvilSet = wire.NewSet(
	anvil.NewManager,
	wire.Bind(new(usecase.AnvilManager), new(*anvil.Manager)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	FSSet,
	ForgeSet,
	ABISet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
	VerificationSet,
	AnvilSet,
)
