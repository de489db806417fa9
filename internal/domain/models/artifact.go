package models

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// BytecodeObject represents bytecode information in a Foundry artifact.
// Hardhat artifacts store the bytecode as a bare string, which UnmarshalJSON accepts.
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap,omitempty"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Object = s
		return nil
	}
	type alias BytecodeObject
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = BytecodeObject(a)
	return nil
}

// Hex returns the bytecode with a 0x prefix
func (b BytecodeObject) Hex() string {
	if strings.HasPrefix(b.Object, "0x") {
		return b.Object
	}
	return "0x" + b.Object
}

// Bytes decodes the bytecode
func (b BytecodeObject) Bytes() []byte {
	return common.FromHex(b.Object)
}

// HasPlaceholders reports whether library link placeholders remain in the bytecode
func (b BytecodeObject) HasPlaceholders() bool {
	return strings.Contains(b.Object, "__")
}

// Artifact represents a compiled contract, from either a Foundry or a Hardhat build
type Artifact struct {
	// Resolved on load, not part of the artifact file
	Name       string `json:"-"`
	Path       string `json:"-"` // artifact file path
	SourcePath string `json:"-"` // e.g. "src/EventContract.sol"

	// Hardhat build-info, for artifacts without embedded metadata
	StandardInput   json.RawMessage `json:"-"`
	SolcLongVersion string          `json:"-"`

	ContractName      string            `json:"contractName,omitempty"` // Hardhat only
	SourceName        string            `json:"sourceName,omitempty"`   // Hardhat only
	ABI               json.RawMessage   `json:"abi"`
	Bytecode          BytecodeObject    `json:"bytecode"`
	DeployedBytecode  BytecodeObject    `json:"deployedBytecode"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers,omitempty"`
	RawMetadata       string            `json:"rawMetadata,omitempty"`
	Metadata          *ArtifactMetadata `json:"metadata,omitempty"`
}

// ArtifactMetadata represents the solc metadata embedded in a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string                    `json:"language"`
	Settings MetadataSettings          `json:"settings"`
	Sources  map[string]MetadataSource `json:"sources"`
}

// MetadataSettings mirrors the compiler settings recorded in solc metadata
type MetadataSettings struct {
	CompilationTarget map[string]string `json:"compilationTarget"`
	EVMVersion        string            `json:"evmVersion,omitempty"`
	Libraries         map[string]string `json:"libraries,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
	Optimizer         struct {
		Enabled bool `json:"enabled"`
		Runs    int  `json:"runs"`
	} `json:"optimizer"`
	Remappings []string `json:"remappings,omitempty"`
	ViaIR      bool     `json:"viaIR,omitempty"`
}

// MetadataSource is a single source entry in solc metadata
type MetadataSource struct {
	Keccak256 string   `json:"keccak256"`
	License   string   `json:"license,omitempty"`
	URLs      []string `json:"urls,omitempty"`
	Content   string   `json:"content,omitempty"`
}

// BytecodeHash returns the keccak256 of the creation bytecode
func (a *Artifact) BytecodeHash() string {
	return crypto.Keccak256Hash(a.Bytecode.Bytes()).Hex()
}

// CompilerVersion returns the solc version without the commit suffix ("0.8.24")
func (a *Artifact) CompilerVersion() string {
	version, _, _ := strings.Cut(a.FullCompilerVersion(), "+")
	return version
}

// FullCompilerVersion returns the solc long version ("0.8.24+commit.e11b9ed9")
func (a *Artifact) FullCompilerVersion() string {
	if a.Metadata == nil {
		return a.SolcLongVersion
	}
	return a.Metadata.Compiler.Version
}

// HasBytecode reports whether the artifact can be deployed
func (a *Artifact) HasBytecode() bool {
	return a.Bytecode.Object != "" && a.Bytecode.Object != "0x"
}

// FullyQualifiedName returns "path:Name" for explorer verification
func (a *Artifact) FullyQualifiedName() string {
	if a.Metadata != nil {
		for path, name := range a.Metadata.Settings.CompilationTarget {
			return path + ":" + name
		}
	}
	return a.SourcePath + ":" + a.Name
}
