package verification

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

const eventContractSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.24;

contract EventContract {}
`

func foundryArtifact() *models.Artifact {
	meta := &models.ArtifactMetadata{Language: "Solidity"}
	meta.Compiler.Version = "0.8.24+commit.e11b9ed9"
	meta.Settings.CompilationTarget = map[string]string{"src/EventContract.sol": "EventContract"}
	meta.Settings.EVMVersion = "cancun"
	meta.Settings.Optimizer.Enabled = true
	meta.Settings.Optimizer.Runs = 200
	meta.Settings.Remappings = []string{"@openzeppelin/=lib/openzeppelin-contracts/"}
	meta.Settings.Libraries = map[string]string{"src/Lib.sol:Lib": "0x0000000000000000000000000000000000000001"}
	meta.Sources = map[string]models.MetadataSource{
		"src/EventContract.sol": {Keccak256: "0x01"},
		"src/Inline.sol":        {Keccak256: "0x02", Content: "contract Inline {}"},
	}
	return &models.Artifact{Name: "EventContract", SourcePath: "src/EventContract.sol", Metadata: meta}
}

func TestBuildStandardInput_FromMetadata(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "EventContract.sol"), []byte(eventContractSource), 0644))

	data, err := BuildStandardInput(root, foundryArtifact())
	require.NoError(t, err)

	var input StandardInput
	require.NoError(t, json.Unmarshal(data, &input))
	assert.Equal(t, "Solidity", input.Language)
	assert.Equal(t, eventContractSource, input.Sources["src/EventContract.sol"].Content)
	assert.Equal(t, "contract Inline {}", input.Sources["src/Inline.sol"].Content)
	assert.True(t, input.Settings.Optimizer.Enabled)
	assert.Equal(t, 200, input.Settings.Optimizer.Runs)
	assert.Equal(t, "cancun", input.Settings.EVMVersion)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", input.Settings.Libraries["src/Lib.sol"]["Lib"])
	assert.Contains(t, input.Settings.OutputSelection["*"]["*"], "abi")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw["settings"], "compilationTarget")
}

func TestBuildStandardInput_Errors(t *testing.T) {
	_, err := BuildStandardInput(t.TempDir(), foundryArtifact())
	assert.ErrorContains(t, err, "src/EventContract.sol")

	_, err = BuildStandardInput(t.TempDir(), &models.Artifact{Name: "Bare"})
	assert.ErrorContains(t, err, "neither metadata nor build info")
}

func TestBuildStandardInput_BuildInfo(t *testing.T) {
	buildInfo := json.RawMessage(`{"language":"Solidity","sources":{},"settings":{}}`)
	data, err := BuildStandardInput(t.TempDir(), &models.Artifact{Name: "EventContract", StandardInput: buildInfo})
	require.NoError(t, err)
	assert.JSONEq(t, string(buildInfo), string(data))
}
