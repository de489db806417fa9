package anvil

import (
	"context"
	"io"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/usecase"
	"github.com/trebuchet-org/mangonel/pkg/anvil"
)

// Manager adapts pkg/anvil to the AnvilManager port
type Manager struct{}

// NewManager creates a new anvil manager adapter
func NewManager() *Manager {
	return &Manager{}
}

// Start starts an anvil instance
func (m *Manager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.toInstance(instance).Start(ctx)
}

// Stop stops an anvil instance
func (m *Manager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.toInstance(instance).Stop()
}

// GetStatus gets the status of an anvil instance
func (m *Manager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	inst := m.toInstance(instance)

	status := &domain.AnvilStatus{
		LogFile: inst.LogFile,
		RPCURL:  inst.RPCURL(),
	}
	if !inst.IsRunning() {
		return status, nil
	}

	status.Running = true
	status.PID, _ = inst.PID()

	block, err := inst.BlockNumber(ctx)
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.RPCHealthy = true
	status.BlockNumber = block
	return status, nil
}

// StreamLogs streams logs from an anvil instance
func (m *Manager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	return m.toInstance(instance).TailLogs(ctx, writer)
}

// setFilePaths fills in defaults for name, port and the PID/log files
func (m *Manager) setFilePaths(instance *domain.AnvilInstance) {
	defaults := anvil.NewInstance(instance.Name, instance.Port)
	instance.Name = defaults.Name
	instance.Port = defaults.Port
	if instance.PidFile == "" {
		instance.PidFile = defaults.PidFile
	}
	if instance.LogFile == "" {
		instance.LogFile = defaults.LogFile
	}
}

func (m *Manager) toInstance(instance *domain.AnvilInstance) *anvil.Instance {
	m.setFilePaths(instance)
	return &anvil.Instance{
		Name:    instance.Name,
		Port:    instance.Port,
		ChainID: instance.ChainID,
		ForkURL: instance.ForkURL,
		PidFile: instance.PidFile,
		LogFile: instance.LogFile,
	}
}

var _ usecase.AnvilManager = (*Manager)(nil)
