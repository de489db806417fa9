package verification

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
)

// EtherscanV2URL is the multichain Etherscan API; the chain is selected by the chainid query parameter
const EtherscanV2URL = "https://api.etherscan.io/v2/api"

// chainAliases are the network names hardhat-verify uses as api_key entries
var chainAliases = map[uint64]string{
	1:        "mainnet",
	11155111: "sepolia",
	17000:    "holesky",
	10:       "optimisticEthereum",
	11155420: "optimismSepolia",
	42161:    "arbitrumOne",
	421614:   "arbitrumSepolia",
	8453:     "base",
	84532:    "baseSepolia",
	137:      "polygon",
	80002:    "polygonAmoy",
	534352:   "scroll",
	534351:   "scrollSepolia",
}

// ChainAlias returns the hardhat-verify alias for a chain, if it has one
func ChainAlias(chainID uint64) (string, bool) {
	alias, ok := chainAliases[chainID]
	return alias, ok
}

// Endpoint is where verification requests for a network go
type Endpoint struct {
	APIURL     string
	BrowserURL string
	APIKey     string
}

// AddressURL links to the verified code of an address
func (e *Endpoint) AddressURL(address string) string {
	if e.BrowserURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(e.BrowserURL, "/"), address)
}

// ResolveEndpoint picks the API URL and key for a network.
// A custom_chains entry (by network name, then chain ID) wins over Etherscan v2.
func ResolveEndpoint(etherscan config.EtherscanConfig, network *domain.Network) (*Endpoint, error) {
	key, err := apiKey(etherscan, network)
	if err != nil {
		return nil, err
	}

	endpoint := &Endpoint{APIKey: key, BrowserURL: network.ExplorerURL}
	if chain := customChain(etherscan, network); chain != nil {
		endpoint.APIURL = chain.APIURL
		if chain.BrowserURL != "" {
			endpoint.BrowserURL = chain.BrowserURL
		}
		return endpoint, nil
	}

	u, err := url.Parse(EtherscanV2URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("chainid", strconv.FormatUint(network.ChainID, 10))
	u.RawQuery = q.Encode()
	endpoint.APIURL = u.String()
	return endpoint, nil
}

func apiKey(etherscan config.EtherscanConfig, network *domain.Network) (string, error) {
	if key := etherscan.APIKey[network.Name]; key != "" {
		return key, nil
	}
	if alias, ok := ChainAlias(network.ChainID); ok {
		if key := etherscan.APIKey[alias]; key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w for network %s (chain %d)", domain.ErrMissingAPIKey, network.Name, network.ChainID)
}

func customChain(etherscan config.EtherscanConfig, network *domain.Network) *config.CustomChain {
	for i := range etherscan.CustomChains {
		if etherscan.CustomChains[i].Network == network.Name {
			return &etherscan.CustomChains[i]
		}
	}
	for i := range etherscan.CustomChains {
		if etherscan.CustomChains[i].ChainID == network.ChainID {
			return &etherscan.CustomChains[i]
		}
	}
	return nil
}
