package abi

import (
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxyEvents(t *testing.T) {
	proxy := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	impl := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	admin := common.HexToAddress("0xCafac3dD18aC6c6e92c921884f9E4176737C052c")

	adminData := append(common.LeftPadBytes(nil, 32), common.LeftPadBytes(admin.Bytes(), 32)...)

	logs := []*types.Log{
		{Address: proxy, Topics: []common.Hash{upgradedTopic, common.BytesToHash(impl.Bytes())}},
		// OwnershipTransferred from the ProxyAdmin is ignored
		{Address: admin, Topics: []common.Hash{common.HexToHash("0x8be0079c531659141344cd1fd0a4f28419497f9722a3daafe3b4186f6b6457e0")}},
		{Address: proxy, Topics: []common.Hash{adminChangedTopic}, Data: adminData},
	}

	events := NewEventParser(slog.Default()).ParseProxyEvents(proxy, logs)
	require.NotNil(t, events.Implementation)
	require.NotNil(t, events.Admin)
	assert.Equal(t, impl, *events.Implementation)
	assert.Equal(t, admin, *events.Admin)
}

func TestParseProxyEventsIndexedAdmin(t *testing.T) {
	proxy := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	admin := common.HexToAddress("0xCafac3dD18aC6c6e92c921884f9E4176737C052c")

	logs := []*types.Log{
		{Address: proxy, Topics: []common.Hash{adminChangedTopic, {}, common.BytesToHash(admin.Bytes())}},
	}

	events := NewEventParser(slog.Default()).ParseProxyEvents(proxy, logs)
	require.NotNil(t, events.Admin)
	assert.Equal(t, admin, *events.Admin)
	assert.Nil(t, events.Implementation)
}

func TestParseProxyEventsOtherEmitter(t *testing.T) {
	proxy := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	logs := []*types.Log{
		{Address: common.HexToAddress("0x01"), Topics: []common.Hash{upgradedTopic, {}}},
		nil,
	}

	events := NewEventParser(slog.Default()).ParseProxyEvents(proxy, logs)
	assert.Nil(t, events.Implementation)
	assert.Nil(t, events.Admin)
}
