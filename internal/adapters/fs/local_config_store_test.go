package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

func TestLocalConfigStore(t *testing.T) {
	ctx := context.Background()
	dataDir := filepath.Join(t.TempDir(), ".mangonel")
	store := NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: dataDir})

	t.Run("defaults when missing", func(t *testing.T) {
		assert.False(t, store.Exists())
		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, cfg.Network)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &config.LocalConfig{Network: "sst"}))
		assert.True(t, store.Exists())
		assert.Equal(t, filepath.Join(dataDir, LocalConfigFile), store.GetPath())

		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sst", cfg.Network)

		_, err = os.Stat(store.GetPath() + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("corrupt file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(store.GetPath(), []byte("{"), 0644))
		_, err := store.Load(ctx)
		assert.Error(t, err)
	})
}
