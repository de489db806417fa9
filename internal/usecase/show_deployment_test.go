package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

func TestShowDeployment(t *testing.T) {
	ctx := context.Background()
	sst := &domain.Network{Name: "sst", ChainID: 534351}

	newUseCase := func(nonInteractive bool, selector *MockDeploymentSelector) *usecase.ShowDeployment {
		cfg := &config.RuntimeConfig{Network: sst, NonInteractive: nonInteractive}
		return usecase.NewShowDeployment(cfg, newMemRepository(sampleRecords()...), selector, &MockProgressSink{})
	}

	t.Run("by name with proxy resolution", func(t *testing.T) {
		result, err := newUseCase(true, nil).Run(ctx, usecase.ShowDeploymentParams{Reference: "EventContract", ResolveProxy: true})
		require.NoError(t, err)

		assert.Equal(t, "EventContract", result.Deployment.Name)
		require.NotNil(t, result.Implementation)
		assert.Equal(t, "EventContract_Implementation", result.Implementation.Name)
		require.NotNil(t, result.ProxyContract)
		assert.Equal(t, "EventContract_Proxy", result.ProxyContract.Name)
	})

	t.Run("by address", func(t *testing.T) {
		result, err := newUseCase(true, nil).Run(ctx, usecase.ShowDeploymentParams{Reference: "0x1111111111111111111111111111111111111111"})
		require.NoError(t, err)
		assert.Equal(t, "EventContract_Implementation", result.Deployment.Name)
		assert.Nil(t, result.Implementation)
	})

	t.Run("not found suggests close names", func(t *testing.T) {
		_, err := newUseCase(true, nil).Run(ctx, usecase.ShowDeploymentParams{Reference: "EvntContract"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		var notFound domain.DeploymentNotFoundErr
		require.True(t, errors.As(err, &notFound))
		assert.Contains(t, notFound.Suggestions, "EventContract")
		assert.LessOrEqual(t, len(notFound.Suggestions), 3)
	})

	t.Run("not found offers a selection when interactive", func(t *testing.T) {
		selector := new(MockDeploymentSelector)
		selector.On("SelectDeployment", ctx, mock.Anything, mock.Anything).
			Return(&models.Deployment{Name: "EventContract", Network: "sst"}, nil)

		result, err := newUseCase(false, selector).Run(ctx, usecase.ShowDeploymentParams{Reference: "EvntContract"})
		require.NoError(t, err)
		assert.Equal(t, "EventContract", result.Deployment.Name)
		selector.AssertExpectations(t)
	})

	t.Run("no reference picks interactively", func(t *testing.T) {
		selector := new(MockDeploymentSelector)
		selector.On("SelectDeployment", ctx, mock.MatchedBy(func(ds []*models.Deployment) bool {
			return len(ds) == 3
		}), "Select deployment").Return(&models.Deployment{Name: "EventContract_Proxy", Network: "sst"}, nil)

		result, err := newUseCase(false, selector).Run(ctx, usecase.ShowDeploymentParams{})
		require.NoError(t, err)
		assert.Equal(t, "EventContract_Proxy", result.Deployment.Name)
	})

	t.Run("no reference in non-interactive mode", func(t *testing.T) {
		_, err := newUseCase(true, nil).Run(ctx, usecase.ShowDeploymentParams{})
		assert.Error(t, err)
	})

	t.Run("network required", func(t *testing.T) {
		uc := usecase.NewShowDeployment(&config.RuntimeConfig{}, newMemRepository(), nil, &MockProgressSink{})
		_, err := uc.Run(ctx, usecase.ShowDeploymentParams{Reference: "EventContract"})
		assert.ErrorIs(t, err, domain.ErrNetworkRequired)
	})
}
