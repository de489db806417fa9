package domain

// Network is a resolved network: a name from mangonel.toml bound to its chain.
type Network struct {
	Name        string   `json:"name"`
	ChainID     uint64   `json:"chainId"`
	RPCURL      string   `json:"rpcUrl"`
	ExplorerURL string   `json:"explorerUrl,omitempty"`
	Live        bool     `json:"live"`
	Accounts    []string `json:"-"` // private keys, never rendered
}

// IsLocal reports whether the network is a local development chain
func (n *Network) IsLocal() bool {
	return n.ChainID == LocalChainID || n.ChainID == HardhatChainID
}

const (
	// LocalChainID is the default anvil chain ID
	LocalChainID uint64 = 31337

	// HardhatChainID is the chain ID hardhat node uses for --network localhost
	HardhatChainID uint64 = 1337
)
