package anvil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	DefaultName = "anvil"
	DefaultPort = "8545"
)

// ErrAlreadyRunning is returned when starting an instance whose PID is alive
var ErrAlreadyRunning = errors.New("anvil is already running")

// Instance is a named local anvil node tracked through a PID file
type Instance struct {
	Name    string
	Port    string
	ChainID string
	ForkURL string
	PidFile string
	LogFile string
}

// NewInstance creates an instance descriptor with PID and log files in the OS temp dir
func NewInstance(name, port string) *Instance {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	if strings.TrimSpace(port) == "" {
		port = DefaultPort
	}
	return &Instance{
		Name:    name,
		Port:    port,
		PidFile: filepath.Join(os.TempDir(), fmt.Sprintf("mangonel-%s.pid", name)),
		LogFile: filepath.Join(os.TempDir(), fmt.Sprintf("mangonel-%s.log", name)),
	}
}

// RPCURL returns the HTTP endpoint of the instance
func (a *Instance) RPCURL() string {
	return fmt.Sprintf("http://127.0.0.1:%s", a.Port)
}

// Args returns the anvil command line for the instance
func (a *Instance) Args() []string {
	args := []string{"--port", a.Port, "--host", "0.0.0.0"}
	if a.ChainID != "" {
		args = append(args, "--chain-id", a.ChainID)
	}
	if a.ForkURL != "" {
		args = append(args, "--fork-url", a.ForkURL)
	}
	return args
}

// Start launches anvil in the background and waits until it answers RPC
func (a *Instance) Start(ctx context.Context) error {
	if a.IsRunning() {
		return fmt.Errorf("%w: '%s' (PID file %s)", ErrAlreadyRunning, a.Name, a.PidFile)
	}

	logFile, err := os.Create(a.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	// not tied to ctx: the node outlives this process
	cmd := exec.Command("anvil", a.Args()...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start anvil: %w", err)
	}

	if err := a.writePidFile(cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	_ = cmd.Process.Release()

	return a.WaitHealthy(ctx, 10*time.Second)
}

// Stop terminates the instance and removes its PID file; stopping a stopped instance is a no-op
func (a *Instance) Stop() error {
	if !a.IsRunning() {
		_ = os.Remove(a.PidFile)
		return nil
	}

	pid, err := a.PID()
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	// the process is not our child, so poll for it to exit
	deadline := time.Now().Add(5 * time.Second)
	for processAlive(pid) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	if processAlive(pid) {
		_ = process.Kill()
	}

	if err := os.Remove(a.PidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning checks if the instance is running by signalling the PID from its PID file
func (a *Instance) IsRunning() bool {
	pid, err := a.PID()
	if err != nil {
		return false
	}
	return processAlive(pid)
}

// PID reads the PID from the instance PID file
func (a *Instance) PID() (int, error) {
	data, err := os.ReadFile(a.PidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %s", string(data))
	}
	return pid, nil
}

// BlockNumber queries eth_blockNumber; it doubles as the health check
func (a *Instance) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, a.RPCURL())
	if err != nil {
		return 0, err
	}
	defer client.Close()

	return client.BlockNumber(ctx)
}

// WaitHealthy polls the RPC until it answers or the timeout passes
func (a *Instance) WaitHealthy(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		_, err := a.BlockNumber(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("anvil '%s' did not answer on %s: %w (see %s)", a.Name, a.RPCURL(), err, a.LogFile)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// TailLogs follows the instance log file until ctx is cancelled
func (a *Instance) TailLogs(ctx context.Context, w io.Writer) error {
	if _, err := os.Stat(a.LogFile); os.IsNotExist(err) {
		return fmt.Errorf("log file does not exist: %s", a.LogFile)
	}
	cmd := exec.CommandContext(ctx, "tail", "-f", a.LogFile)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (a *Instance) writePidFile(pid int) error {
	return os.WriteFile(a.PidFile, []byte(strconv.Itoa(pid)), 0644)
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
