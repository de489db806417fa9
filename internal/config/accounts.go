package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

// AnvilDevKey is the first account anvil and hardhat fund on local chains
const AnvilDevKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// AccountResolver turns named accounts into signers for a network
type AccountResolver struct {
	project *config.ProjectConfig
}

// NewAccountResolver creates a new account resolver
func NewAccountResolver(project *config.ProjectConfig) *AccountResolver {
	return &AccountResolver{project: project}
}

// Resolve resolves a named account (e.g. "deployer") on a network.
// A literal 0x address is accepted as an unnamed account.
func (r *AccountResolver) Resolve(name string, network *domain.Network) (*domain.Signer, error) {
	if network == nil {
		return nil, domain.ErrNetworkRequired
	}

	if isHexAddress(name) {
		return &domain.Signer{Name: name, Address: common.HexToAddress(name)}, nil
	}

	mapping, ok := r.project.NamedAccounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: named account '%s' is not declared", domain.ErrAccountNotFound, name)
	}

	value, ok := mapping[network.Name]
	if !ok {
		value, ok = mapping["default"]
	}
	if !ok {
		return nil, fmt.Errorf("%w: named account '%s' has no entry for network %s or default", domain.ErrAccountNotFound, name, network.Name)
	}

	if addr, ok := value.(string); ok {
		if !isHexAddress(addr) {
			return nil, fmt.Errorf("named account '%s': invalid address %q: %w", name, addr, domain.ErrInvalidAddress)
		}
		return &domain.Signer{Name: name, Address: common.HexToAddress(addr)}, nil
	}

	index, err := accountIndex(value)
	if err != nil {
		return nil, fmt.Errorf("named account '%s': %w", name, err)
	}

	key, err := r.privateKey(network, index)
	if err != nil {
		return nil, fmt.Errorf("named account '%s': %w", name, err)
	}

	pk, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, fmt.Errorf("named account '%s': invalid private key at index %d: %w", name, index, err)
	}

	return &domain.Signer{
		Name:    name,
		Address: crypto.PubkeyToAddress(pk.PublicKey),
		Key:     pk,
	}, nil
}

// Names returns the declared named accounts
func (r *AccountResolver) Names() []string {
	names := make([]string, 0, len(r.project.NamedAccounts))
	for name := range r.project.NamedAccounts {
		names = append(names, name)
	}
	return names
}

func (r *AccountResolver) privateKey(network *domain.Network, index int) (string, error) {
	accounts := network.Accounts
	if len(accounts) == 0 && network.IsLocal() {
		accounts = []string{AnvilDevKey}
	}

	if index >= len(accounts) {
		return "", fmt.Errorf("%w: index %d out of range (network %s has %d accounts)", domain.ErrAccountNotFound, index, network.Name, len(accounts))
	}

	key := accounts[index]
	if key == "" {
		if envVar, ok := r.rawAccountEnvVar(network.Name, index); ok {
			return "", fmt.Errorf("%w: account %d of network %s is empty (is %s set?)", domain.ErrAccountNotFound, index, network.Name, envVar)
		}
		return "", fmt.Errorf("%w: account %d of network %s is empty", domain.ErrAccountNotFound, index, network.Name)
	}
	return key, nil
}

func (r *AccountResolver) rawAccountEnvVar(network string, index int) (string, bool) {
	netCfg, ok := r.project.Networks[network]
	if !ok || index >= len(netCfg.RawAccounts) {
		return "", false
	}
	return DetectEnvVar(netCfg.RawAccounts[index])
}

func accountIndex(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("account index %v is not an integer", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected an account index or a 0x address, got %T", value)
	}
}
