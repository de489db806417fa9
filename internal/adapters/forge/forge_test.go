package forge

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

func newTestForgeAdapter(t *testing.T, compiler config.CompilerConfig) *ForgeAdapter {
	return NewForgeAdapter(&config.RuntimeConfig{
		ProjectRoot: t.TempDir(),
		Project:     &config.ProjectConfig{Compiler: compiler},
	}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func requirePTY(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/ptmx"); err != nil {
		t.Skip("no pty support")
	}
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{"default", "", []string{"forge", "build"}},
		{"hardhat", "npx hardhat compile", []string{"npx", "hardhat", "compile"}},
		{"extra spaces", "  forge   build --sizes ", []string{"forge", "build", "--sizes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestForgeAdapter(t, config.CompilerConfig{Command: tt.command})
			assert.Equal(t, tt.want, adapter.commandArgs())
		})
	}
}

func TestBuildEnv(t *testing.T) {
	adapter := newTestForgeAdapter(t, config.CompilerConfig{Version: "0.8.24", Optimizer: true, OptimizerRuns: 200})

	assert.Equal(t, []string{
		"FOUNDRY_OPTIMIZER=true",
		"FOUNDRY_OPTIMIZER_RUNS=200",
		"FOUNDRY_SOLC_VERSION=0.8.24",
	}, adapter.buildEnv("forge"))
	assert.Equal(t, []string{"FOUNDRY_SOLC_VERSION=0.8.24"}, newTestForgeAdapter(t, config.CompilerConfig{Version: "0.8.24"}).buildEnv("/usr/local/bin/forge"))
	assert.Empty(t, adapter.buildEnv("npx"))

	zeroRuns := newTestForgeAdapter(t, config.CompilerConfig{Version: "0.8.24", Optimizer: true, OptimizerRuns: 0})
	assert.Contains(t, zeroRuns.buildEnv("forge"), "FOUNDRY_OPTIMIZER_RUNS=0")
}

func TestBuild(t *testing.T) {
	requirePTY(t)

	t.Run("success streams in debug mode", func(t *testing.T) {
		adapter := newTestForgeAdapter(t, config.CompilerConfig{Command: "echo Compiler run successful"})
		adapter.debug = true
		var out bytes.Buffer
		adapter.out = &out

		require.NoError(t, adapter.Build(context.Background()))
		assert.Contains(t, out.String(), "Compiler run successful")
	})

	t.Run("failure carries output", func(t *testing.T) {
		adapter := newTestForgeAdapter(t, config.CompilerConfig{Command: "ls does-not-exist"})

		err := adapter.Build(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ls does-not-exist failed")
		assert.Contains(t, err.Error(), "does-not-exist")
	})

	t.Run("missing binary", func(t *testing.T) {
		adapter := newTestForgeAdapter(t, config.CompilerConfig{Command: "mangonel-no-such-compiler"})
		assert.Error(t, adapter.Build(context.Background()))
	})
}
