package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

// LocalRPCURL is the endpoint of the implicit localhost/anvil networks
const LocalRPCURL = "http://127.0.0.1:8545"

var implicitNetworks = map[string]bool{
	"localhost": true,
	"anvil":     true,
}

func isImplicitNetwork(name string) bool {
	return implicitNetworks[name]
}

func isHexAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ChainIDFetcher queries the chain ID behind an RPC endpoint
type ChainIDFetcher func(ctx context.Context, rpcURL string) (uint64, error)

// NetworkResolver resolves network names to configurations with caching
type NetworkResolver struct {
	dataDir    string
	project    *config.ProjectConfig
	fetchChain ChainIDFetcher
	cache      *NetworkCache
	mu         sync.RWMutex
}

// NetworkCache caches chain ID lookups for networks declared without chain_id
type NetworkCache struct {
	RPCs      map[string]uint64 `json:"rpcs"` // rpcURL -> chainID
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(dataDir string, project *config.ProjectConfig) *NetworkResolver {
	r := &NetworkResolver{
		dataDir:    dataDir,
		project:    project,
		fetchChain: FetchChainID,
	}
	r.loadCache()
	return r
}

// WithChainIDFetcher replaces the RPC lookup used for networks without chain_id
func (r *NetworkResolver) WithChainIDFetcher(fetch ChainIDFetcher) *NetworkResolver {
	r.fetchChain = fetch
	return r
}

// Names returns the declared network names plus the implicit local ones, sorted
func (r *NetworkResolver) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for name := range r.project.Networks {
		seen[name] = true
		names = append(names, name)
	}
	for name := range implicitNetworks {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(networkName string) (*domain.Network, error) {
	netCfg, exists := r.project.Networks[networkName]
	if !exists {
		if !isImplicitNetwork(networkName) {
			return nil, fmt.Errorf("%w: '%s' not found in %s [networks]", domain.ErrUnknownNetwork, networkName, ProjectFile)
		}
		netCfg = config.NetworkConfig{URL: LocalRPCURL, ChainID: domain.LocalChainID}
	}

	chainID := netCfg.ChainID
	if chainID == 0 {
		var err error
		chainID, err = r.lookupChainID(netCfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", networkName, err)
		}
	}

	network := &domain.Network{
		Name:     networkName,
		ChainID:  chainID,
		RPCURL:   netCfg.URL,
		Accounts: netCfg.Accounts,
	}
	network.Live = netCfg.IsLive(network.IsLocal() || isImplicitNetwork(networkName))
	network.ExplorerURL = r.explorerURL(networkName, netCfg, chainID)

	return network, nil
}

func (r *NetworkResolver) lookupChainID(rpcURL string) (uint64, error) {
	r.mu.RLock()
	chainID, cached := r.cache.RPCs[rpcURL]
	r.mu.RUnlock()
	if cached {
		return chainID, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chainID, err := r.fetchChain(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	r.updateCache(rpcURL, chainID)
	return chainID, nil
}

// FetchChainID asks an RPC endpoint for its chain ID
func FetchChainID(ctx context.Context, rpcURL string) (uint64, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_chainId failed: %w", err)
	}
	return chainID.Uint64(), nil
}

// explorerURL returns the browser URL for a network
func (r *NetworkResolver) explorerURL(networkName string, netCfg config.NetworkConfig, chainID uint64) string {
	if netCfg.Explorer != "" {
		return netCfg.Explorer
	}
	for _, chain := range r.project.Etherscan.CustomChains {
		if chain.Network == networkName && chain.BrowserURL != "" {
			return chain.BrowserURL
		}
	}
	return DefaultExplorerURL(chainID)
}

// DefaultExplorerURL returns the well-known block explorer for a chain
func DefaultExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 11155420:
		return "https://sepolia-optimism.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 84532:
		return "https://sepolia.basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 421614:
		return "https://sepolia.arbiscan.io"
	case 534352:
		return "https://scrollscan.com"
	case 534351:
		return "https://sepolia.scrollscan.com"
	case 56:
		return "https://bscscan.com"
	case 43114:
		return "https://snowtrace.io"
	default:
		return ""
	}
}

// loadCache loads the chain ID cache from disk
func (r *NetworkResolver) loadCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = &NetworkCache{RPCs: make(map[string]uint64)}

	data, err := os.ReadFile(r.cachePath())
	if err != nil {
		return
	}

	var cache NetworkCache
	if err := json.Unmarshal(data, &cache); err != nil || cache.RPCs == nil {
		return
	}
	r.cache = &cache
}

func (r *NetworkResolver) updateCache(rpcURL string, chainID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.RPCs[rpcURL] = chainID
	r.cache.UpdatedAt = time.Now()

	// cache is only an optimisation
	_ = r.saveCache()
}

func (r *NetworkResolver) saveCache() error {
	if err := os.MkdirAll(r.dataDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.cachePath(), data, 0644)
}

func (r *NetworkResolver) cachePath() string {
	return filepath.Join(r.dataDir, "chainIds.json")
}
