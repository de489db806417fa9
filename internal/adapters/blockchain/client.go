package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// Client implements the ChainClient interface using ethclient
type Client struct {
	client  *ethclient.Client
	chainID *big.Int
	network string
	log     *slog.Logger
}

// NewClient creates a new blockchain client adapter
func NewClient(log *slog.Logger) *Client {
	return &Client{log: log.With("component", "chain")}
}

// Connect dials the network and checks the RPC serves the configured chain
func (c *Client) Connect(ctx context.Context, network *domain.Network) error {
	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to get chain ID from %s: %w", network.RPCURL, err)
	}

	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		client.Close()
		return fmt.Errorf("%w: network %s expects chain ID %d, RPC returned %d",
			domain.ErrNetworkMismatch, network.Name, network.ChainID, chainID.Uint64())
	}

	c.client = client
	c.chainID = chainID
	c.network = network.Name
	c.log.Debug("connected", "network", network.Name, "chainId", chainID)
	return nil
}

// DeployContract sends a contract creation transaction and waits for it to be mined
func (c *Client) DeployContract(ctx context.Context, signer *domain.Signer, contractABI *abi.ABI, bytecode []byte, args []any) (*usecase.DeployedContract, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected to blockchain")
	}
	if !signer.CanSign() {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrSignerWithoutKey, signer.Name, signer.Address.Hex())
	}

	auth, err := bind.NewKeyedTransactorWithChainID(signer.Key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	address, tx, _, err := bind.DeployContract(auth, *contractABI, bytecode, c.client, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}
	c.log.Debug("deployment sent", "tx", tx.Hash().Hex(), "address", address.Hex())

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionReverted, tx.Hash().Hex())
	}

	return &usecase.DeployedContract{
		Address: address,
		TxHash:  tx.Hash(),
		Receipt: toReceipt(receipt, signer.Address),
		Logs:    receipt.Logs,
	}, nil
}

// CodeExists reports whether the address holds contract code
func (c *Client) CodeExists(ctx context.Context, address common.Address) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("not connected to blockchain")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	code, err := c.client.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check code at %s: %w", address.Hex(), err)
	}
	return len(code) > 0, nil
}

// ProbeChainID queries the chain ID behind an RPC endpoint without keeping the connection
func (c *Client) ProbeChainID(ctx context.Context, rpcURL string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return chainID.Uint64(), nil
}

// Close releases the RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

func toReceipt(receipt *types.Receipt, from common.Address) *models.Receipt {
	r := &models.Receipt{
		From:            from.Hex(),
		ContractAddress: receipt.ContractAddress.Hex(),
		TransactionHash: receipt.TxHash.Hex(),
		BlockHash:       receipt.BlockHash.Hex(),
		GasUsed:         receipt.GasUsed,
		Status:          receipt.Status,
	}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.EffectiveGasPrice != nil {
		r.EffectiveGasPrice = receipt.EffectiveGasPrice.String()
	}
	return r
}

var (
	_ usecase.ChainClient = (*Client)(nil)
	_ usecase.ChainProber = (*Client)(nil)
)
