package blockchain

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/adapters/abi"
	"github.com/trebuchet-org/mangonel/internal/domain"
)

const anvilKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	zeroHash  = "0x" + strings.Repeat("00", 32)
	zeroBloom = "0x" + strings.Repeat("00", 256)
)

// fakeNode is a minimal JSON-RPC node: enough for ethclient to dial, read
// code and send a legacy contract creation
type fakeNode struct {
	t       *testing.T
	chainID uint64
	status  uint64
	code    map[common.Address]string

	mu   sync.Mutex
	sent []*types.Transaction
}

func newFakeNode(t *testing.T, chainID uint64) (*fakeNode, *httptest.Server) {
	node := &fakeNode{t: t, chainID: chainID, status: 1, code: map[common.Address]string{}}
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)
	return node, server
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, rpcErr := n.handle(req.Method, req.Params)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != "" {
		resp["error"] = map[string]any{"code": -32000, "message": rpcErr}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) handle(method string, params []json.RawMessage) (any, string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch method {
	case "eth_chainId":
		return hexutil.EncodeUint64(n.chainID), ""
	case "eth_getCode":
		var addr common.Address
		require.NoError(n.t, json.Unmarshal(params[0], &addr))
		if code, ok := n.code[addr]; ok {
			return code, ""
		}
		return "0x", ""
	case "eth_getBlockByNumber":
		return map[string]any{
			"parentHash":       zeroHash,
			"sha3Uncles":       zeroHash,
			"miner":            common.Address{}.Hex(),
			"stateRoot":        zeroHash,
			"transactionsRoot": zeroHash,
			"receiptsRoot":     zeroHash,
			"logsBloom":        zeroBloom,
			"difficulty":       "0x0",
			"number":           "0x1",
			"gasLimit":         "0x1c9c380",
			"gasUsed":          "0x0",
			"timestamp":        "0x0",
			"extraData":        "0x",
		}, ""
	case "eth_gasPrice":
		return "0x3b9aca00", ""
	case "eth_getTransactionCount":
		return hexutil.EncodeUint64(uint64(len(n.sent))), ""
	case "eth_estimateGas":
		return "0x30d40", ""
	case "eth_sendRawTransaction":
		var raw hexutil.Bytes
		require.NoError(n.t, json.Unmarshal(params[0], &raw))
		tx := new(types.Transaction)
		require.NoError(n.t, tx.UnmarshalBinary(raw))
		n.sent = append(n.sent, tx)
		return tx.Hash().Hex(), ""
	case "eth_getTransactionReceipt":
		var hash common.Hash
		require.NoError(n.t, json.Unmarshal(params[0], &hash))
		for i, tx := range n.sent {
			if tx.Hash() != hash {
				continue
			}
			from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
			require.NoError(n.t, err)
			return map[string]any{
				"transactionHash":   hash.Hex(),
				"transactionIndex":  "0x0",
				"blockHash":         zeroHash,
				"blockNumber":       hexutil.EncodeUint64(uint64(i + 1)),
				"contractAddress":   crypto.CreateAddress(from, tx.Nonce()).Hex(),
				"cumulativeGasUsed": "0x1e240",
				"gasUsed":           "0x1e240",
				"effectiveGasPrice": "0x3b9aca00",
				"logsBloom":         zeroBloom,
				"logs":              []any{},
				"status":            hexutil.EncodeUint64(n.status),
				"type":              "0x0",
			}, ""
		}
		return nil, ""
	default:
		return nil, "method not supported: " + method
	}
}

func testSigner(t *testing.T) *domain.Signer {
	t.Helper()
	key, err := crypto.HexToECDSA(anvilKey)
	require.NoError(t, err)
	return &domain.Signer{Name: "deployer", Address: crypto.PubkeyToAddress(key.PublicKey), Key: key}
}

func TestConnect(t *testing.T) {
	_, server := newFakeNode(t, 534351)
	ctx := context.Background()

	t.Run("matching chain", func(t *testing.T) {
		c := NewClient(slog.Default())
		defer c.Close()
		require.NoError(t, c.Connect(ctx, &domain.Network{Name: "sst", ChainID: 534351, RPCURL: server.URL}))
	})

	t.Run("mismatching chain", func(t *testing.T) {
		c := NewClient(slog.Default())
		err := c.Connect(ctx, &domain.Network{Name: "sst", ChainID: 1, RPCURL: server.URL})
		require.ErrorIs(t, err, domain.ErrNetworkMismatch)
		assert.Contains(t, err.Error(), "RPC returned 534351")
	})
}

func TestCodeExists(t *testing.T) {
	node, server := newFakeNode(t, 31337)
	deployed := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	node.code[deployed] = "0x6080"

	c := NewClient(slog.Default())
	defer c.Close()

	_, err := c.CodeExists(context.Background(), deployed)
	require.Error(t, err, "not connected yet")

	require.NoError(t, c.Connect(context.Background(), &domain.Network{Name: "localhost", ChainID: 31337, RPCURL: server.URL}))

	exists, err := c.CodeExists(context.Background(), deployed)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.CodeExists(context.Background(), common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProbeChainID(t *testing.T) {
	_, server := newFakeNode(t, 534351)

	chainID, err := NewClient(slog.Default()).ProbeChainID(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, uint64(534351), chainID)
}

func TestDeployContract(t *testing.T) {
	const erc20MockABI = `[{"type":"constructor","inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"}],"stateMutability":"nonpayable"}]`
	bytecode := hexutil.MustDecode("0x6080604052348015600e575f5ffd5b50")

	contractABI, err := abi.ParseABI(json.RawMessage(erc20MockABI))
	require.NoError(t, err)

	t.Run("mined", func(t *testing.T) {
		node, server := newFakeNode(t, 31337)
		c := NewClient(slog.Default())
		defer c.Close()
		require.NoError(t, c.Connect(context.Background(), &domain.Network{Name: "localhost", ChainID: 31337, RPCURL: server.URL}))

		signer := testSigner(t)
		deployed, err := c.DeployContract(context.Background(), signer, contractABI, bytecode, []any{"Be Right There", "BRT"})
		require.NoError(t, err)

		assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), deployed.Address)
		require.Len(t, node.sent, 1)
		assert.Equal(t, node.sent[0].Hash(), deployed.TxHash)
		assert.Nil(t, node.sent[0].To())

		argsData, err := contractABI.Pack("", "Be Right There", "BRT")
		require.NoError(t, err)
		assert.Equal(t, append(append([]byte{}, bytecode...), argsData...), node.sent[0].Data())

		require.NotNil(t, deployed.Receipt)
		assert.Equal(t, signer.Address.Hex(), deployed.Receipt.From)
		assert.Equal(t, uint64(123456), deployed.Receipt.GasUsed)
		assert.Equal(t, uint64(1), deployed.Receipt.BlockNumber)
		assert.Equal(t, "1000000000", deployed.Receipt.EffectiveGasPrice)
	})

	t.Run("reverted", func(t *testing.T) {
		node, server := newFakeNode(t, 31337)
		node.status = 0
		c := NewClient(slog.Default())
		defer c.Close()
		require.NoError(t, c.Connect(context.Background(), &domain.Network{Name: "localhost", ChainID: 31337, RPCURL: server.URL}))

		_, err := c.DeployContract(context.Background(), testSigner(t), contractABI, bytecode, []any{"Be Right There", "BRT"})
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	})

	t.Run("signer without key", func(t *testing.T) {
		_, server := newFakeNode(t, 31337)
		c := NewClient(slog.Default())
		defer c.Close()
		require.NoError(t, c.Connect(context.Background(), &domain.Network{Name: "localhost", ChainID: 31337, RPCURL: server.URL}))

		signer := &domain.Signer{Name: "owner", Address: common.HexToAddress("0xf8Bc58f8aef773aBBA1019E8aA048fc5AF876a38")}
		_, err := c.DeployContract(context.Background(), signer, contractABI, bytecode, []any{"a", "b"})
		assert.ErrorIs(t, err, domain.ErrSignerWithoutKey)
	})
}
