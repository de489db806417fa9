package config

// ProjectConfig represents mangonel.toml
type ProjectConfig struct {
	Compiler      CompilerConfig                `toml:"compiler"`
	Networks      map[string]NetworkConfig      `toml:"networks"`
	NamedAccounts map[string]NamedAccountConfig `toml:"named_accounts"`
	Etherscan     EtherscanConfig               `toml:"etherscan"`
	Paths         PathsConfig                   `toml:"paths"`
}

// CompilerConfig declares the solc version and where build output lands
type CompilerConfig struct {
	Version       string `toml:"version"`
	Optimizer     bool   `toml:"optimizer,omitempty"`
	OptimizerRuns int    `toml:"optimizer_runs,omitempty"`
	Artifacts     string `toml:"artifacts,omitempty"` // "out" (Foundry) or "artifacts" (Hardhat)
	Command       string `toml:"command,omitempty"`   // build command, e.g. "forge build"
}

// NetworkConfig is a [networks.<name>] section
type NetworkConfig struct {
	ChainID  uint64   `toml:"chain_id,omitempty"`
	URL      string   `toml:"url"`
	Accounts []string `toml:"accounts,omitempty"` //nolint:gosec // holds env var references
	Live     *bool    `toml:"live,omitempty"`
	Explorer string   `toml:"explorer,omitempty"`

	// RawAccounts keeps the unexpanded entries so an unset ${VAR} can be
	// reported by name
	RawAccounts []string `toml:"-"`
}

// NamedAccountConfig maps a role to an account per network.
// Keys are network names or "default"; values are an index into the
// network's accounts or a literal address.
type NamedAccountConfig map[string]any

// EtherscanConfig mirrors hardhat-verify's etherscan section
type EtherscanConfig struct {
	APIKey       map[string]string `toml:"api_key"`
	CustomChains []CustomChain     `toml:"custom_chains"`
}

// CustomChain declares explorer endpoints for a chain unknown to Etherscan v2
type CustomChain struct {
	Network    string `toml:"network"`
	ChainID    uint64 `toml:"chain_id"`
	APIURL     string `toml:"api_url"`
	BrowserURL string `toml:"browser_url"`
}

// PathsConfig overrides project directories
type PathsConfig struct {
	Deploy      string `toml:"deploy,omitempty"`
	Deployments string `toml:"deployments,omitempty"`
	Sources     string `toml:"sources,omitempty"`
}

// IsLive reports whether the network holds real value; defaults to true for
// networks that are not local
func (n NetworkConfig) IsLive(local bool) bool {
	if n.Live != nil {
		return *n.Live
	}
	return !local
}
