package usecase_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

func TestExportDeployments(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepository(sampleRecords()...)
	cfg := &config.RuntimeConfig{Network: &domain.Network{Name: "sst", ChainID: 534351}}

	t.Run("returns the export for stdout", func(t *testing.T) {
		result, err := usecase.NewExportDeployments(cfg, repo).Run(ctx, usecase.ExportDeploymentsParams{})
		require.NoError(t, err)
		assert.Empty(t, result.Path)
		assert.Equal(t, "534351", result.Export.ChainID)
		assert.Contains(t, result.Export.Contracts, "EventContract")
	})

	t.Run("writes a file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "exports", "sst.json")
		result, err := usecase.NewExportDeployments(cfg, repo).Run(ctx, usecase.ExportDeploymentsParams{Output: out})
		require.NoError(t, err)
		assert.Equal(t, out, result.Path)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		var export models.Export
		require.NoError(t, json.Unmarshal(data, &export))
		assert.Equal(t, "sst", export.Name)
		assert.Equal(t, "0x2222222222222222222222222222222222222222", export.Contracts["EventContract"].Address)
	})

	t.Run("explicit network", func(t *testing.T) {
		result, err := usecase.NewExportDeployments(&config.RuntimeConfig{}, repo).Run(ctx, usecase.ExportDeploymentsParams{Network: "localhost"})
		require.NoError(t, err)
		assert.Equal(t, "31337", result.Export.ChainID)
	})

	t.Run("network required", func(t *testing.T) {
		_, err := usecase.NewExportDeployments(&config.RuntimeConfig{}, repo).Run(ctx, usecase.ExportDeploymentsParams{})
		assert.ErrorIs(t, err, domain.ErrNetworkRequired)
	})
}
