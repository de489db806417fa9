package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

func verifiableRecords() []*models.Deployment {
	records := sampleRecords()[:3]
	for _, r := range records {
		r.ContractName = "EventContract"
		r.TransactionHash = "0xaa"
		r.Verification.Status = models.VerificationStatusUnverified
	}
	records[2].ContractName = "TransparentUpgradeableProxy"
	return records
}

type verifyFixture struct {
	repo      *memRepository
	artifacts *MockArtifactRepository
	verifier  *MockContractVerifier
	network   *domain.Network
}

func newVerifyFixture(records ...*models.Deployment) *verifyFixture {
	f := &verifyFixture{
		repo:      newMemRepository(records...),
		artifacts: new(MockArtifactRepository),
		verifier:  new(MockContractVerifier),
		network:   &domain.Network{Name: "sst", ChainID: 534351},
	}
	f.artifacts.On("GetArtifact", mock.Anything, "EventContract").Return(&models.Artifact{Name: "EventContract"}, nil).Maybe()
	f.artifacts.On("GetArtifact", mock.Anything, "TransparentUpgradeableProxy").Return(&models.Artifact{Name: "TransparentUpgradeableProxy"}, nil).Maybe()
	return f
}

func (f *verifyFixture) useCase() *usecase.VerifyDeployment {
	return usecase.NewVerifyDeployment(&config.RuntimeConfig{Network: f.network}, f.repo, f.artifacts, f.verifier, &MockProgressSink{})
}

func verified(name string) *models.VerificationInfo {
	return &models.VerificationInfo{
		Status: models.VerificationStatusVerified,
		URL:    fmt.Sprintf("https://sepolia.scrollscan.com/address/%s#code", name),
	}
}

func TestVerifySpecificProxy(t *testing.T) {
	ctx := context.Background()
	f := newVerifyFixture(verifiableRecords()...)

	f.verifier.On("Verify", ctx, "EventContract_Implementation", mock.Anything, f.network).Return(verified("impl"), nil)
	f.verifier.On("Verify", ctx, "EventContract_Proxy", mock.Anything, f.network).Return(verified("proxy"), nil)

	results, err := f.useCase().VerifySpecific(ctx, "EventContract", usecase.VerifyOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)

	for _, name := range []string{"EventContract", "EventContract_Implementation", "EventContract_Proxy"} {
		rec, err := f.repo.GetDeployment(ctx, "sst", name)
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusVerified, rec.Verification.Status, name)
	}
	f.verifier.AssertExpectations(t)
}

func TestVerifySpecificFailure(t *testing.T) {
	ctx := context.Background()
	f := newVerifyFixture(verifiableRecords()...)

	failed := &models.VerificationInfo{Status: models.VerificationStatusFailed, Reason: "Bytecode mismatch"}
	f.verifier.On("Verify", ctx, "EventContract_Implementation", mock.Anything, f.network).
		Return(failed, fmt.Errorf("%w: Bytecode mismatch", domain.ErrVerificationFailed))
	f.verifier.On("Verify", ctx, "EventContract_Proxy", mock.Anything, f.network).Return(verified("proxy"), nil)

	results, err := f.useCase().VerifySpecific(ctx, "EventContract", usecase.VerifyOptions{})
	require.NoError(t, err)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Errors[0], "Bytecode mismatch")

	rec, err := f.repo.GetDeployment(ctx, "sst", "EventContract")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusFailed, rec.Verification.Status)
	assert.Equal(t, "Bytecode mismatch", rec.Verification.Reason)
}

func TestVerifySpecificAlreadyVerified(t *testing.T) {
	ctx := context.Background()
	records := verifiableRecords()
	records[1].Verification.Status = models.VerificationStatusVerified
	f := newVerifyFixture(records...)

	results, err := f.useCase().VerifySpecific(ctx, "EventContract_Implementation", usecase.VerifyOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Contains(t, results[0].Errors[0], "--force")
	f.verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	f.verifier.On("Verify", ctx, "EventContract_Implementation", mock.Anything, f.network).Return(verified("impl"), nil)
	results, err = f.useCase().VerifySpecific(ctx, "EventContract_Implementation", usecase.VerifyOptions{Force: true})
	require.NoError(t, err)
	assert.True(t, results[0].Success)
	assert.Empty(t, results[0].Errors)
}

func TestVerifySpecificLocalChain(t *testing.T) {
	ctx := context.Background()
	f := newVerifyFixture(sampleRecords()...)
	f.network = &domain.Network{Name: "localhost", ChainID: domain.LocalChainID}

	_, err := f.useCase().VerifySpecific(ctx, "ERC20Mock", usecase.VerifyOptions{})
	assert.Error(t, err)
}

func TestVerifyAll(t *testing.T) {
	ctx := context.Background()
	records := verifiableRecords()
	records = append(records, &models.Deployment{
		Name: "Imported", Network: "sst", ChainID: 534351, Kind: models.SingletonDeployment, ContractName: "EventContract",
	})
	f := newVerifyFixture(records...)

	f.verifier.On("Verify", ctx, "EventContract_Implementation", mock.Anything, f.network).Return(verified("impl"), nil)
	f.verifier.On("Verify", ctx, "EventContract_Proxy", mock.Anything, f.network).Return(verified("proxy"), nil)

	result, err := f.useCase().VerifyAll(ctx, usecase.VerifyOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Len(t, result.Results, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Imported", result.Skipped[0].Deployment.Name)

	rec, err := f.repo.GetDeployment(ctx, "sst", "EventContract")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, rec.Verification.Status)
}

func TestVerifyAllLocalChainSkipsEverything(t *testing.T) {
	ctx := context.Background()
	records := []*models.Deployment{{
		Name: "ERC20Mock", Network: "localhost", ChainID: 31337, Kind: models.SingletonDeployment, TransactionHash: "0xcc",
	}}
	f := newVerifyFixture(records...)
	f.network = &domain.Network{Name: "localhost", ChainID: domain.LocalChainID}

	result, err := f.useCase().VerifyAll(ctx, usecase.VerifyOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Local chain", result.Skipped[0].Reason)
}
