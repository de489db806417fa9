package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DeploymentKind represents the kind of deployment a record describes
type DeploymentKind string

const (
	SingletonDeployment      DeploymentKind = "SINGLETON"
	ProxyDeployment          DeploymentKind = "PROXY"
	ImplementationDeployment DeploymentKind = "IMPLEMENTATION"
	ProxyContractDeployment  DeploymentKind = "PROXY_CONTRACT"
)

// ProxyKind names the proxy contract a deployment sits behind
type ProxyKind string

const (
	TransparentProxy ProxyKind = "OpenZeppelinTransparentProxy"
	ERC1967Proxy     ProxyKind = "ERC1967Proxy"
	UUPSProxy        ProxyKind = "UUPS"
)

// DefaultArtifact returns the compiled contract name used for the proxy kind
func (k ProxyKind) DefaultArtifact() string {
	switch k {
	case TransparentProxy:
		return "TransparentUpgradeableProxy"
	case ERC1967Proxy, UUPSProxy:
		return "ERC1967Proxy"
	default:
		return ""
	}
}

// Valid reports whether the proxy kind is supported
func (k ProxyKind) Valid() bool {
	return k.DefaultArtifact() != ""
}

// VerificationStatus represents the verification status
type VerificationStatus string

const (
	VerificationStatusUnverified VerificationStatus = "UNVERIFIED"
	VerificationStatusVerified   VerificationStatus = "VERIFIED"
	VerificationStatusFailed     VerificationStatus = "FAILED"
)

const (
	// ImplementationSuffix is appended to a proxied deployment name for its implementation record
	ImplementationSuffix = "_Implementation"
	// ProxySuffix is appended to a proxied deployment name for its proxy contract record
	ProxySuffix = "_Proxy"
)

// Deployment is the persisted record of a deployed contract, laid out like
// hardhat-deploy's deployments/<network>/<Name>.json
type Deployment struct {
	Name             string          `json:"-"`
	Network          string          `json:"-"`
	ChainID          uint64          `json:"-"`
	Kind             DeploymentKind  `json:"kind"`
	ContractName     string          `json:"contractName"`
	Address          string          `json:"address"`
	ABI              json.RawMessage `json:"abi"`
	TransactionHash  string          `json:"transactionHash,omitempty"`
	Receipt          *Receipt        `json:"receipt,omitempty"`
	Args             []any           `json:"args"`
	ArgsData         string          `json:"argsData,omitempty"` // hex encoded constructor arguments
	Bytecode         string          `json:"bytecode,omitempty"`
	DeployedBytecode string          `json:"deployedBytecode,omitempty"`
	BytecodeHash     string          `json:"bytecodeHash,omitempty"`
	SourcePath       string          `json:"sourcePath,omitempty"`
	CompilerVersion  string          `json:"compilerVersion,omitempty"`
	NumDeployments   int             `json:"numDeployments"`

	// Proxy information (nil for non-proxy deployments)
	Implementation string     `json:"implementation,omitempty"`
	Proxy          *ProxyInfo `json:"proxy,omitempty"`
	Execute        *Execute   `json:"execute,omitempty"`

	Verification VerificationInfo `json:"verification"`

	Script    string    `json:"script,omitempty"` // deploy script that produced the record
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Receipt is the subset of the transaction receipt kept in the record
type Receipt struct {
	From              string `json:"from"`
	To                string `json:"to,omitempty"`
	ContractAddress   string `json:"contractAddress"`
	TransactionHash   string `json:"transactionHash"`
	BlockHash         string `json:"blockHash"`
	BlockNumber       uint64 `json:"blockNumber"`
	GasUsed           uint64 `json:"gasUsed"`
	EffectiveGasPrice string `json:"effectiveGasPrice,omitempty"`
	Status            uint64 `json:"status"`
}

// ProxyInfo contains proxy-specific information
type ProxyInfo struct {
	Kind           ProxyKind `json:"kind"`
	Address        string    `json:"address"`
	Owner          string    `json:"owner,omitempty"`
	Admin          string    `json:"admin,omitempty"` // ProxyAdmin created by a transparent proxy
	Implementation string    `json:"implementation"`
}

// Execute records the initializer call executed through the proxy
type Execute struct {
	MethodName string `json:"methodName"`
	Args       []any  `json:"args"`
}

// VerificationInfo contains verification details
type VerificationInfo struct {
	Status     VerificationStatus `json:"status"`
	URL        string             `json:"url,omitempty"`
	VerifiedAt *time.Time         `json:"verifiedAt,omitempty"`
	Reason     string             `json:"reason,omitempty"`
}

// IsProxy reports whether the record is the user-facing record of a proxied deployment
func (d *Deployment) IsProxy() bool {
	return d.Kind == ProxyDeployment && d.Proxy != nil
}

// BaseName strips the implementation/proxy suffix from a derived record name
func (d *Deployment) BaseName() string {
	name := strings.TrimSuffix(d.Name, ImplementationSuffix)
	return strings.TrimSuffix(name, ProxySuffix)
}

// ImplementationName returns the record name used for the implementation of a proxied deployment
func ImplementationName(name string) string {
	return name + ImplementationSuffix
}

// ProxyName returns the record name used for the proxy contract of a proxied deployment
func ProxyName(name string) string {
	return name + ProxySuffix
}
