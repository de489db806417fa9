package verification

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// StandardInput is the solc standard JSON input submitted to the explorer
type StandardInput struct {
	Language string                         `json:"language"`
	Sources  map[string]StandardInputSource `json:"sources"`
	Settings StandardInputSettings          `json:"settings"`
}

// StandardInputSource holds one source file's content
type StandardInputSource struct {
	Content string `json:"content"`
}

// StandardInputSettings are the compiler settings recorded in the artifact metadata
type StandardInputSettings struct {
	Optimizer struct {
		Enabled bool `json:"enabled"`
		Runs    int  `json:"runs"`
	} `json:"optimizer"`
	EVMVersion      string                         `json:"evmVersion,omitempty"`
	ViaIR           bool                           `json:"viaIR,omitempty"`
	Remappings      []string                       `json:"remappings,omitempty"`
	Metadata        map[string]any                 `json:"metadata,omitempty"`
	Libraries       map[string]map[string]string   `json:"libraries,omitempty"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

// BuildStandardInput returns the standard JSON input for an artifact: the
// Hardhat build-info input when present, else one rebuilt from the solc
// metadata with sources read relative to the project root
func BuildStandardInput(projectRoot string, artifact *models.Artifact) ([]byte, error) {
	if len(artifact.StandardInput) > 0 {
		return artifact.StandardInput, nil
	}
	if artifact.Metadata == nil {
		return nil, fmt.Errorf("artifact %s has neither metadata nor build info", artifact.Name)
	}

	meta := artifact.Metadata
	input := StandardInput{
		Language: meta.Language,
		Sources:  make(map[string]StandardInputSource, len(meta.Sources)),
		Settings: StandardInputSettings{
			EVMVersion: meta.Settings.EVMVersion,
			ViaIR:      meta.Settings.ViaIR,
			Remappings: meta.Settings.Remappings,
			Metadata:   meta.Settings.Metadata,
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode", "evm.deployedBytecode", "metadata"}},
			},
		},
	}
	if input.Language == "" {
		input.Language = "Solidity"
	}
	input.Settings.Optimizer.Enabled = meta.Settings.Optimizer.Enabled
	input.Settings.Optimizer.Runs = meta.Settings.Optimizer.Runs

	if len(meta.Settings.Libraries) > 0 {
		// metadata keys libraries as "path:Name"
		input.Settings.Libraries = make(map[string]map[string]string)
		for fqn, address := range meta.Settings.Libraries {
			path, name := splitFQN(fqn)
			if input.Settings.Libraries[path] == nil {
				input.Settings.Libraries[path] = make(map[string]string)
			}
			input.Settings.Libraries[path][name] = address
		}
	}

	for path, source := range meta.Sources {
		content := source.Content
		if content == "" {
			data, err := os.ReadFile(filepath.Join(projectRoot, filepath.FromSlash(path)))
			if err != nil {
				return nil, fmt.Errorf("failed to read source %s: %w", path, err)
			}
			content = string(data)
		}
		input.Sources[path] = StandardInputSource{Content: content}
	}

	return json.Marshal(input)
}

func splitFQN(fqn string) (string, string) {
	for i := len(fqn) - 1; i >= 0; i-- {
		if fqn[i] == ':' {
			return fqn[:i], fqn[i+1:]
		}
	}
	return "", fqn
}
