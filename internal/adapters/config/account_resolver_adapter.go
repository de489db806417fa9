package config

import (
	"context"

	"github.com/trebuchet-org/mangonel/internal/config"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// AccountResolverAdapter adapts the config.AccountResolver to the usecase.AccountResolver interface
type AccountResolverAdapter struct {
	resolver *config.AccountResolver
}

// NewAccountResolverAdapter creates a new adapter
func NewAccountResolverAdapter(resolver *config.AccountResolver) *AccountResolverAdapter {
	return &AccountResolverAdapter{resolver: resolver}
}

// ResolveAccount resolves a named account on a network
func (a *AccountResolverAdapter) ResolveAccount(ctx context.Context, name string, network *domain.Network) (*domain.Signer, error) {
	return a.resolver.Resolve(name, network)
}

var _ usecase.AccountResolver = (*AccountResolverAdapter)(nil)
