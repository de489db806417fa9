package anvil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstance(t *testing.T) {
	inst := NewInstance("", "")
	assert.Equal(t, DefaultName, inst.Name)
	assert.Equal(t, DefaultPort, inst.Port)
	assert.Equal(t, filepath.Join(os.TempDir(), "mangonel-anvil.pid"), inst.PidFile)
	assert.Equal(t, filepath.Join(os.TempDir(), "mangonel-anvil.log"), inst.LogFile)
	assert.Equal(t, "http://127.0.0.1:8545", inst.RPCURL())

	named := NewInstance("sst-fork", "9000")
	assert.Equal(t, filepath.Join(os.TempDir(), "mangonel-sst-fork.pid"), named.PidFile)
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		inst Instance
		want []string
	}{
		{"basic", Instance{Port: "8545"}, []string{"--port", "8545", "--host", "0.0.0.0"}},
		{"chain id", Instance{Port: "9000", ChainID: "534351"}, []string{"--port", "9000", "--host", "0.0.0.0", "--chain-id", "534351"}},
		{
			"fork",
			Instance{Port: "9000", ChainID: "534351", ForkURL: "https://sepolia-rpc.scroll.io/"},
			[]string{"--port", "9000", "--host", "0.0.0.0", "--chain-id", "534351", "--fork-url", "https://sepolia-rpc.scroll.io/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.inst.Args())
		})
	}
}

func TestIsRunning(t *testing.T) {
	dir := t.TempDir()
	inst := &Instance{Name: "test", PidFile: filepath.Join(dir, "test.pid")}

	assert.False(t, inst.IsRunning(), "no PID file")

	require.NoError(t, os.WriteFile(inst.PidFile, []byte("not-a-pid"), 0644))
	assert.False(t, inst.IsRunning())

	require.NoError(t, inst.writePidFile(os.Getpid()))
	assert.True(t, inst.IsRunning())

	pid, err := inst.PID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestStop_NotRunning(t *testing.T) {
	dir := t.TempDir()
	inst := &Instance{Name: "test", PidFile: filepath.Join(dir, "test.pid")}
	require.NoError(t, os.WriteFile(inst.PidFile, []byte("not-a-pid"), 0644))

	require.NoError(t, inst.Stop())
	_, err := os.Stat(inst.PidFile)
	assert.True(t, os.IsNotExist(err), "stale PID file is removed")
}

func newBlockNumberServer(t *testing.T, block uint64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eth_blockNumber", req.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x" + strconv.FormatUint(block, 16),
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func portOf(server *httptest.Server) string {
	parts := strings.Split(server.URL, ":")
	return parts[len(parts)-1]
}

func TestBlockNumber(t *testing.T) {
	server := newBlockNumberServer(t, 42)
	inst := NewInstance("test", portOf(server))

	block, err := inst.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)

	require.NoError(t, inst.WaitHealthy(context.Background(), 0))
}

func TestWaitHealthy_Timeout(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	port := portOf(server)
	server.Close()

	inst := NewInstance("test", port)
	err := inst.WaitHealthy(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not answer")
}

func TestTailLogs_MissingFile(t *testing.T) {
	inst := &Instance{Name: "test", LogFile: filepath.Join(t.TempDir(), "missing.log")}
	err := inst.TailLogs(context.Background(), os.Stdout)
	assert.ErrorContains(t, err, "log file does not exist")
}
