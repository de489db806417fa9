package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

const (
	eventContractABI = `[{"type":"function","name":"initialize","inputs":[{"name":"_owner","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}]`
	testBytecode     = "0x6080604052348015600e575f5ffd5b50"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func foundryArtifact(source, name, bytecode, solc string) map[string]any {
	return map[string]any{
		"abi":              json.RawMessage(eventContractABI),
		"bytecode":         map[string]any{"object": bytecode},
		"deployedBytecode": map[string]any{"object": bytecode},
		"metadata": map[string]any{
			"compiler": map[string]any{"version": solc},
			"language": "Solidity",
			"settings": map[string]any{
				"compilationTarget": map[string]string{source: name},
				"optimizer":         map[string]any{"enabled": false, "runs": 200},
			},
			"sources": map[string]any{source: map[string]any{"keccak256": "0x00"}},
		},
	}
}

func newTestRepository(t *testing.T, artifactsDir string) (*Repository, *bytes.Buffer, string) {
	t.Helper()
	root := t.TempDir()
	logs := &bytes.Buffer{}
	cfg := &config.RuntimeConfig{
		ProjectRoot: root,
		Project: &config.ProjectConfig{
			Compiler: config.CompilerConfig{Version: "0.8.24", Artifacts: artifactsDir},
		},
	}
	return NewRepository(cfg, slog.New(slog.NewTextHandler(logs, nil))), logs, root
}

func TestRepositoryFoundry(t *testing.T) {
	repo, logs, root := newTestRepository(t, "out")
	out := filepath.Join(root, "out")
	writeJSON(t, filepath.Join(out, "EventContract.sol", "EventContract.json"),
		foundryArtifact("src/EventContract.sol", "EventContract", testBytecode, "0.8.24+commit.e11b9ed9"))
	writeJSON(t, filepath.Join(out, "ERC20Mock.sol", "ERC20Mock.json"),
		foundryArtifact("src/mocks/ERC20Mock.sol", "ERC20Mock", testBytecode, "0.8.20+commit.a1b79de6"))
	writeJSON(t, filepath.Join(out, "build-info", "abc.json"), map[string]any{"id": "abc"})

	ctx := context.Background()

	t.Run("by name", func(t *testing.T) {
		artifact, err := repo.GetArtifact(ctx, "EventContract")
		require.NoError(t, err)
		assert.Equal(t, "EventContract", artifact.Name)
		assert.Equal(t, "src/EventContract.sol", artifact.SourcePath)
		assert.Equal(t, "0.8.24", artifact.CompilerVersion())
		assert.Equal(t, "src/EventContract.sol:EventContract", artifact.FullyQualifiedName())
		assert.True(t, artifact.HasBytecode())
		assert.JSONEq(t, eventContractABI, string(artifact.ABI))
	})

	t.Run("by fully qualified name", func(t *testing.T) {
		artifact, err := repo.GetArtifact(ctx, "src/mocks/ERC20Mock.sol:ERC20Mock")
		require.NoError(t, err)
		assert.Equal(t, "ERC20Mock", artifact.Name)
	})

	t.Run("compiler mismatch is a warning", func(t *testing.T) {
		_, err := repo.GetArtifact(ctx, "ERC20Mock")
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "different solc version")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetArtifact(ctx, "Missing")
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})
}

func TestRepositoryAmbiguous(t *testing.T) {
	repo, _, root := newTestRepository(t, "out")
	out := filepath.Join(root, "out")
	writeJSON(t, filepath.Join(out, "Token.sol", "Token.json"),
		foundryArtifact("src/Token.sol", "Token", testBytecode, "0.8.24+commit.e11b9ed9"))
	writeJSON(t, filepath.Join(out, "legacy", "Token.sol", "Token.json"),
		foundryArtifact("src/legacy/Token.sol", "Token", testBytecode, "0.8.24+commit.e11b9ed9"))

	_, err := repo.GetArtifact(context.Background(), "Token")
	var ambiguous domain.AmbiguousArtifactErr
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, []string{"src/Token.sol:Token", "src/legacy/Token.sol:Token"}, ambiguous.Matches)
}

func TestRepositoryVersionedArtifacts(t *testing.T) {
	repo, _, root := newTestRepository(t, "out")
	out := filepath.Join(root, "out", "Token.sol")
	writeJSON(t, filepath.Join(out, "Token.json"),
		foundryArtifact("src/Token.sol", "Token", testBytecode, "0.8.24+commit.e11b9ed9"))
	writeJSON(t, filepath.Join(out, "Token.0.8.20.json"),
		foundryArtifact("src/Token.sol", "Token", testBytecode, "0.8.20+commit.a1b79de6"))

	artifact, err := repo.GetArtifact(context.Background(), "Token")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "Token.json"), artifact.Path)
}

func TestRepositoryUnlinkedLibraries(t *testing.T) {
	repo, _, root := newTestRepository(t, "out")
	writeJSON(t, filepath.Join(root, "out", "Linked.sol", "Linked.json"),
		foundryArtifact("src/Linked.sol", "Linked", "0x6080__$1234567890abcdef1234567890abcdef12$__", "0.8.24+commit.e11b9ed9"))

	_, err := repo.GetArtifact(context.Background(), "Linked")
	assert.ErrorIs(t, err, domain.ErrUnlinkedLibraries)
}

func TestRepositoryHardhat(t *testing.T) {
	repo, _, root := newTestRepository(t, "artifacts")
	dir := filepath.Join(root, "artifacts", "contracts", "EventContract.sol")
	writeJSON(t, filepath.Join(dir, "EventContract.json"), map[string]any{
		"_format":          "hh-sol-artifact-1",
		"contractName":     "EventContract",
		"sourceName":       "contracts/EventContract.sol",
		"abi":              json.RawMessage(eventContractABI),
		"bytecode":         testBytecode,
		"deployedBytecode": testBytecode,
	})
	writeJSON(t, filepath.Join(dir, "EventContract.dbg.json"), map[string]any{
		"_format":   "hh-sol-dbg-1",
		"buildInfo": "../../build-info/abc.json",
	})
	writeJSON(t, filepath.Join(root, "artifacts", "build-info", "abc.json"), map[string]any{
		"solcLongVersion": "0.8.24+commit.e11b9ed9",
		"input":           map[string]any{"language": "Solidity"},
	})

	artifact, err := repo.GetArtifact(context.Background(), "EventContract")
	require.NoError(t, err)
	assert.Equal(t, "contracts/EventContract.sol", artifact.SourcePath)
	assert.Equal(t, testBytecode, artifact.Bytecode.Hex())
	assert.Equal(t, "0.8.24", artifact.CompilerVersion())
	assert.JSONEq(t, `{"language":"Solidity"}`, string(artifact.StandardInput))
}

func TestRepositoryMissingBuildDir(t *testing.T) {
	repo, _, _ := newTestRepository(t, "out")
	_, err := repo.GetArtifact(context.Background(), "EventContract")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}
