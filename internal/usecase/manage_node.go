package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/trebuchet-org/mangonel/internal/domain"
)

// NodeOperation names an action on the local anvil node
type NodeOperation string

const (
	NodeStart   NodeOperation = "start"
	NodeStop    NodeOperation = "stop"
	NodeRestart NodeOperation = "restart"
	NodeStatus  NodeOperation = "status"
	NodeLogs    NodeOperation = "logs"
)

// ManageNodeParams contains parameters for node operations
type ManageNodeParams struct {
	Operation NodeOperation
	Name      string
	Port      string
	ChainID   string
	ForkURL   string
	LogWriter io.Writer // logs only
}

// ManageNodeResult contains the result of a node operation
type ManageNodeResult struct {
	Operation NodeOperation
	Instance  *domain.AnvilInstance
	Status    *domain.AnvilStatus
	Message   string
}

// ManageNode starts, stops and inspects the local anvil node used as the
// "localhost" network
type ManageNode struct {
	anvil    AnvilManager
	progress ProgressSink
}

// NewManageNode creates a new ManageNode use case
func NewManageNode(anvil AnvilManager, progress ProgressSink) *ManageNode {
	return &ManageNode{
		anvil:    anvil,
		progress: progress,
	}
}

// Run performs the node operation
func (m *ManageNode) Run(ctx context.Context, params ManageNodeParams) (*ManageNodeResult, error) {
	instance := &domain.AnvilInstance{
		Name:    params.Name,
		Port:    params.Port,
		ChainID: params.ChainID,
		ForkURL: params.ForkURL,
	}

	switch params.Operation {
	case NodeStart:
		return m.start(ctx, instance)
	case NodeStop:
		return m.stop(ctx, instance)
	case NodeRestart:
		if _, err := m.stop(ctx, instance); err != nil {
			return nil, err
		}
		res, err := m.start(ctx, instance)
		if err != nil {
			return nil, err
		}
		res.Operation = NodeRestart
		return res, nil
	case NodeStatus:
		status, err := m.anvil.GetStatus(ctx, instance)
		if err != nil {
			return nil, fmt.Errorf("failed to get status: %w", err)
		}
		return &ManageNodeResult{Operation: NodeStatus, Instance: instance, Status: status}, nil
	case NodeLogs:
		if params.LogWriter == nil {
			return nil, fmt.Errorf("no log writer")
		}
		if err := m.anvil.StreamLogs(ctx, instance, params.LogWriter); err != nil {
			return nil, err
		}
		return &ManageNodeResult{Operation: NodeLogs, Instance: instance}, nil
	default:
		return nil, fmt.Errorf("unknown operation: %s", params.Operation)
	}
}

func (m *ManageNode) start(ctx context.Context, instance *domain.AnvilInstance) (*ManageNodeResult, error) {
	status, err := m.anvil.GetStatus(ctx, instance)
	if err == nil && status.Running {
		return nil, fmt.Errorf("anvil '%s' is already running (PID %d)", instance.Name, status.PID)
	}

	m.progress.Info(fmt.Sprintf("Starting anvil '%s' on port %s", instance.Name, instance.Port))
	if err := m.anvil.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start anvil: %w", err)
	}

	status, err = m.anvil.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}
	return &ManageNodeResult{
		Operation: NodeStart,
		Instance:  instance,
		Status:    status,
		Message:   fmt.Sprintf("Anvil '%s' started with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageNode) stop(ctx context.Context, instance *domain.AnvilInstance) (*ManageNodeResult, error) {
	status, err := m.anvil.GetStatus(ctx, instance)
	if err != nil || !status.Running {
		return &ManageNodeResult{
			Operation: NodeStop,
			Instance:  instance,
			Message:   fmt.Sprintf("Anvil '%s' is not running", instance.Name),
		}, nil
	}

	if err := m.anvil.Stop(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to stop anvil: %w", err)
	}
	return &ManageNodeResult{
		Operation: NodeStop,
		Instance:  instance,
		Message:   fmt.Sprintf("Anvil '%s' stopped", instance.Name),
	}, nil
}
