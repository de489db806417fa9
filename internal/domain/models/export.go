package models

import "encoding/json"

// Export is the hardhat-deploy style summary of a network's deployments
type Export struct {
	Name      string                      `json:"name"`
	ChainID   string                      `json:"chainId"`
	Contracts map[string]ExportedContract `json:"contracts"`
}

// ExportedContract is the address and ABI of one exported deployment
type ExportedContract struct {
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
}
