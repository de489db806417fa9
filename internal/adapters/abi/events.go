package abi

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// Known ERC1967 event signatures
var (
	upgradedTopic     = crypto.Keccak256Hash([]byte("Upgraded(address)"))
	adminChangedTopic = crypto.Keccak256Hash([]byte("AdminChanged(address,address)"))
)

// EventParser reads the ERC1967 events a proxy emits while it is constructed
type EventParser struct {
	log *slog.Logger
}

// NewEventParser creates a new proxy event parser
func NewEventParser(log *slog.Logger) *EventParser {
	return &EventParser{log: log.With("component", "proxy-events")}
}

// ParseProxyEvents extracts the implementation and admin announced by the proxy
func (p *EventParser) ParseProxyEvents(proxy common.Address, logs []*types.Log) *usecase.ProxyEvents {
	events := &usecase.ProxyEvents{}

	for _, log := range logs {
		if log == nil || log.Address != proxy || len(log.Topics) == 0 {
			continue
		}

		switch log.Topics[0] {
		case upgradedTopic:
			if len(log.Topics) < 2 {
				p.log.Debug("invalid Upgraded event: not enough topics", "tx", log.TxHash)
				continue
			}
			impl := common.BytesToAddress(log.Topics[1].Bytes())
			events.Implementation = &impl
		case adminChangedTopic:
			if admin, ok := parseAdminChanged(log); ok {
				events.Admin = &admin
			}
		}
	}

	return events
}

// parseAdminChanged returns the new admin. OpenZeppelin emits both addresses
// as data; older proxies index them.
func parseAdminChanged(log *types.Log) (common.Address, bool) {
	if len(log.Topics) >= 3 {
		return common.BytesToAddress(log.Topics[2].Bytes()), true
	}
	if len(log.Data) >= 64 {
		return common.BytesToAddress(log.Data[32:64]), true
	}
	return common.Address{}, false
}

var _ usecase.ProxyEventParser = (*EventParser)(nil)
