package verification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// fakeExplorer answers verifysourcecode with a fixed response and
// checkverifystatus from a queue, repeating the last entry
type fakeExplorer struct {
	t        *testing.T
	submit   etherscanResponse
	statuses []etherscanResponse

	mu        sync.Mutex
	submitted map[string]string
	checks    int
}

func (f *fakeExplorer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NoError(f.t, r.ParseForm())
	assert.Equal(f.t, "sst-key", r.Form.Get("apikey"))

	var resp etherscanResponse
	switch r.Form.Get("action") {
	case "verifysourcecode":
		assert.Equal(f.t, http.MethodPost, r.Method)
		f.submitted = map[string]string{}
		for key := range r.PostForm {
			f.submitted[key] = r.PostForm.Get(key)
		}
		resp = f.submit
	case "checkverifystatus":
		assert.Equal(f.t, "guid-1", r.Form.Get("guid"))
		resp = f.statuses[min(f.checks, len(f.statuses)-1)]
		f.checks++
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestVerifier(t *testing.T, explorer *fakeExplorer) *Verifier {
	t.Helper()
	explorer.t = t
	server := httptest.NewServer(explorer)
	t.Cleanup(server.Close)

	v := NewVerifier(&config.RuntimeConfig{
		ProjectRoot: t.TempDir(),
		Project: &config.ProjectConfig{
			Etherscan: config.EtherscanConfig{
				APIKey: map[string]string{"sst": "sst-key"},
				CustomChains: []config.CustomChain{
					{Network: "sst", ChainID: 534351, APIURL: server.URL + "/api", BrowserURL: "https://sepolia.scrollscan.com"},
				},
			},
		},
	}, slog.Default())
	v.pollInterval = time.Millisecond
	v.maxAttempts = 3
	return v
}

func verifyTarget() (*models.Deployment, *models.Artifact, *domain.Network) {
	artifact := foundryArtifact()
	artifact.Metadata.Sources = map[string]models.MetadataSource{
		"src/EventContract.sol": {Content: eventContractSource},
	}
	deployment := &models.Deployment{
		Name:     "EventContract_Implementation",
		Address:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ArgsData: "0x",
	}
	return deployment, artifact, &domain.Network{Name: "sst", ChainID: 534351}
}

func TestVerify_PassAfterPending(t *testing.T) {
	explorer := &fakeExplorer{
		submit: etherscanResponse{Status: "1", Message: "OK", Result: "guid-1"},
		statuses: []etherscanResponse{
			{Status: "0", Message: "NOTOK", Result: "Pending in queue"},
			{Status: "1", Message: "OK", Result: "Pass - Verified"},
		},
	}
	v := newTestVerifier(t, explorer)
	deployment, artifact, network := verifyTarget()

	info, err := v.Verify(context.Background(), deployment, artifact, network)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, info.Status)
	assert.Equal(t, "https://sepolia.scrollscan.com/address/0x5FbDB2315678afecb367f032d93F642f64180aa3#code", info.URL)
	assert.NotNil(t, info.VerifiedAt)
	assert.Equal(t, 2, explorer.checks)

	assert.Equal(t, "solidity-standard-json-input", explorer.submitted["codeformat"])
	assert.Equal(t, "src/EventContract.sol:EventContract", explorer.submitted["contractname"])
	assert.Equal(t, "v0.8.24+commit.e11b9ed9", explorer.submitted["compilerversion"])
	assert.Equal(t, deployment.Address, explorer.submitted["contractaddress"])
	assert.NotContains(t, explorer.submitted, "constructorArguements")
	assert.Contains(t, explorer.submitted["sourceCode"], "contract EventContract {}")
}

func TestVerify_AlreadyVerified(t *testing.T) {
	explorer := &fakeExplorer{
		submit: etherscanResponse{Status: "0", Message: "NOTOK", Result: "Contract source code already verified"},
	}
	v := newTestVerifier(t, explorer)
	deployment, artifact, network := verifyTarget()
	deployment.ArgsData = "0x000000000000000000000000f8bc58f8aef773abba1019e8aa048fc5af876a38"

	info, err := v.Verify(context.Background(), deployment, artifact, network)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, info.Status)
	assert.Equal(t, 0, explorer.checks)
	assert.Equal(t, "000000000000000000000000f8bc58f8aef773abba1019e8aa048fc5af876a38", explorer.submitted["constructorArguements"])
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name     string
		explorer *fakeExplorer
		reason   string
	}{
		{
			name:     "rejected on submit",
			explorer: &fakeExplorer{submit: etherscanResponse{Status: "0", Message: "NOTOK", Result: "Invalid API Key"}},
			reason:   "Invalid API Key",
		},
		{
			name: "compilation mismatch",
			explorer: &fakeExplorer{
				submit:   etherscanResponse{Status: "1", Result: "guid-1"},
				statuses: []etherscanResponse{{Status: "0", Message: "NOTOK", Result: "Fail - Unable to verify"}},
			},
			reason: "Fail - Unable to verify",
		},
		{
			name: "never leaves the queue",
			explorer: &fakeExplorer{
				submit:   etherscanResponse{Status: "1", Result: "guid-1"},
				statuses: []etherscanResponse{{Status: "0", Result: "Pending in queue"}},
			},
			reason: "still pending after 3 attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(t, tt.explorer)
			deployment, artifact, network := verifyTarget()

			info, err := v.Verify(context.Background(), deployment, artifact, network)
			require.ErrorIs(t, err, domain.ErrVerificationFailed)
			require.NotNil(t, info)
			assert.Equal(t, models.VerificationStatusFailed, info.Status)
			assert.Contains(t, info.Reason, tt.reason)
		})
	}
}

func TestVerify_MissingAPIKey(t *testing.T) {
	v := newTestVerifier(t, &fakeExplorer{})
	deployment, artifact, _ := verifyTarget()

	info, err := v.Verify(context.Background(), deployment, artifact, &domain.Network{Name: "base", ChainID: 8453})
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
	assert.Nil(t, info)
}
