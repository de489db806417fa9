package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

const (
	// ProjectFile is the project configuration file name
	ProjectFile = "mangonel.toml"

	DefaultArtifactsDir   = "out"
	DefaultCompileCommand = "forge build"
	DefaultOptimizerRuns  = 200
	DefaultDeployDir      = "deploy"
	DefaultDeploymentsDir = "deployments"
)

// envVarPattern matches ${VAR_NAME} patterns in TOML values
var envVarPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

var solcVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// DetectEnvVar checks if a raw TOML value is a simple ${VAR_NAME} reference.
// Returns the variable name and true if the value is a pure env var reference.
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// FindProjectRoot walks up from current directory to find mangonel.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a mangonel project (%s not found)", ProjectFile)
		}
		dir = parent
	}
}

// LoadEnvFiles loads .env and then .env.local from the project root.
// Variables already present in the process environment win over .env;
// .env.local overrides both.
func LoadEnvFiles(projectRoot string) error {
	envFile := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	localFile := filepath.Join(projectRoot, ".env.local")
	if _, err := os.Stat(localFile); err == nil {
		if err := godotenv.Overload(localFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", localFile, err)
		}
	}

	return nil
}

// LoadProjectConfig loads .env files and parses mangonel.toml with env var expansion
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, error) {
	if err := LoadEnvFiles(projectRoot); err != nil {
		return nil, err
	}

	path := filepath.Join(projectRoot, ProjectFile)
	var cfg config.ProjectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}

	expandProjectConfig(&cfg)
	applyDefaults(&cfg, meta)

	if err := ValidateProjectConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandProjectConfig replaces ${VAR} references with environment values.
// Raw account references are kept so missing keys can be reported by name.
func expandProjectConfig(cfg *config.ProjectConfig) {
	for name, network := range cfg.Networks {
		network.URL = os.ExpandEnv(network.URL)
		network.Explorer = os.ExpandEnv(network.Explorer)
		network.RawAccounts = network.Accounts
		accounts := make([]string, len(network.Accounts))
		for i, account := range network.Accounts {
			accounts[i] = strings.TrimSpace(os.ExpandEnv(account))
		}
		network.Accounts = accounts
		cfg.Networks[name] = network
	}

	for network, key := range cfg.Etherscan.APIKey {
		cfg.Etherscan.APIKey[network] = os.ExpandEnv(key)
	}

	for i, chain := range cfg.Etherscan.CustomChains {
		chain.APIURL = os.ExpandEnv(chain.APIURL)
		chain.BrowserURL = os.ExpandEnv(chain.BrowserURL)
		cfg.Etherscan.CustomChains[i] = chain
	}
}

func applyDefaults(cfg *config.ProjectConfig, meta toml.MetaData) {
	if cfg.Compiler.Artifacts == "" {
		cfg.Compiler.Artifacts = DefaultArtifactsDir
	}
	if cfg.Compiler.Command == "" {
		cfg.Compiler.Command = DefaultCompileCommand
	}
	if !meta.IsDefined("compiler", "optimizer_runs") {
		cfg.Compiler.OptimizerRuns = DefaultOptimizerRuns
	}
	if cfg.Paths.Deploy == "" {
		cfg.Paths.Deploy = DefaultDeployDir
	}
	if cfg.Paths.Deployments == "" {
		cfg.Paths.Deployments = DefaultDeploymentsDir
	}
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]config.NetworkConfig)
	}
	if cfg.NamedAccounts == nil {
		cfg.NamedAccounts = make(map[string]config.NamedAccountConfig)
	}
	if cfg.Etherscan.APIKey == nil {
		cfg.Etherscan.APIKey = make(map[string]string)
	}
}

// ValidateProjectConfig checks the static shape of a project configuration
func ValidateProjectConfig(cfg *config.ProjectConfig) error {
	if cfg.Compiler.Version == "" {
		return fmt.Errorf("%s: compiler.version is required", ProjectFile)
	}
	if !solcVersionPattern.MatchString(cfg.Compiler.Version) {
		return fmt.Errorf("%s: invalid compiler.version %q (expected MAJOR.MINOR.PATCH)", ProjectFile, cfg.Compiler.Version)
	}
	if cfg.Compiler.OptimizerRuns < 0 {
		return fmt.Errorf("%s: compiler.optimizer_runs must not be negative", ProjectFile)
	}

	for name, network := range cfg.Networks {
		if network.URL == "" {
			return fmt.Errorf("%s: network %q has no url", ProjectFile, name)
		}
	}

	for role, mapping := range cfg.NamedAccounts {
		for network, value := range mapping {
			if network != "default" {
				if _, ok := cfg.Networks[network]; !ok && !isImplicitNetwork(network) {
					return fmt.Errorf("%s: named account %q references unknown network %q", ProjectFile, role, network)
				}
			}
			if err := validateAccountRef(value); err != nil {
				return fmt.Errorf("%s: named account %q on %q: %w", ProjectFile, role, network, err)
			}
		}
	}

	for _, chain := range cfg.Etherscan.CustomChains {
		if chain.APIURL == "" {
			return fmt.Errorf("%s: etherscan custom chain %q has no api_url", ProjectFile, chain.Network)
		}
	}

	return nil
}

func validateAccountRef(value any) error {
	switch v := value.(type) {
	case int, int64, float64:
		index, err := accountIndex(v)
		if err != nil {
			return err
		}
		if index < 0 {
			return fmt.Errorf("account index must be >= 0, got %d", index)
		}
		return nil
	case string:
		if !isHexAddress(v) {
			return fmt.Errorf("expected an account index or a 0x address, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected an account index or a 0x address, got %T", value)
	}
}
