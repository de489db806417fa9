package domain

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
)

// Signer is a named account resolved for a network.
// Key is nil for accounts configured as a bare address.
type Signer struct {
	Name    string
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// CanSign reports whether the signer holds a private key
func (s *Signer) CanSign() bool {
	return s != nil && s.Key != nil
}
