package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trebuchet-org/mangonel/internal/domain"
)

// ErrAlreadyVerified is returned when the explorer already holds the source
var ErrAlreadyVerified = errors.New("contract source code already verified")

// Service talks to an Etherscan compatible verification API
type Service struct {
	client *http.Client
}

// NewService creates a new verification service
func NewService() *Service {
	return &Service{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// VerificationParams contains parameters for contract verification
type VerificationParams struct {
	Address         string
	ContractName    string // "path/File.sol:Name"
	StandardInput   []byte
	CompilerVersion string // "v0.8.24+commit.e11b9ed9"
	ConstructorArgs string // hex without 0x
}

// VerificationStatus is the state of a submitted verification
type VerificationStatus struct {
	Pending  bool
	Verified bool
	Message  string
}

// Submit sends the standard JSON input and returns the GUID to poll
func (s *Service) Submit(ctx context.Context, endpoint *Endpoint, params VerificationParams) (string, error) {
	data := url.Values{}
	data.Set("apikey", endpoint.APIKey)
	data.Set("module", "contract")
	data.Set("action", "verifysourcecode")
	data.Set("contractaddress", params.Address)
	data.Set("sourceCode", string(params.StandardInput))
	data.Set("codeformat", "solidity-standard-json-input")
	data.Set("contractname", params.ContractName)
	data.Set("compilerversion", params.CompilerVersion)
	if params.ConstructorArgs != "" {
		data.Set("constructorArguements", params.ConstructorArgs) // Note: Etherscan typo
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.APIURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit verification: %w", err)
	}

	if result.Status != "1" {
		if isAlreadyVerified(result.Result) {
			return "", ErrAlreadyVerified
		}
		return "", fmt.Errorf("%w: %s", domain.ErrVerificationFailed, result.message())
	}
	return result.Result, nil
}

// CheckStatus checks the status of a pending verification
func (s *Service) CheckStatus(ctx context.Context, endpoint *Endpoint, guid string) (*VerificationStatus, error) {
	u, err := url.Parse(endpoint.APIURL)
	if err != nil {
		return nil, err
	}
	params := u.Query()
	params.Set("apikey", endpoint.APIKey)
	params.Set("module", "contract")
	params.Set("action", "checkverifystatus")
	params.Set("guid", guid)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	result, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check status: %w", err)
	}

	switch {
	case strings.Contains(strings.ToLower(result.Result), "pending"):
		return &VerificationStatus{Pending: true, Message: result.Result}, nil
	case result.Status == "1", isAlreadyVerified(result.Result):
		return &VerificationStatus{Verified: true, Message: result.Result}, nil
	default:
		return &VerificationStatus{Message: result.message()}, nil
	}
}

func (s *Service) do(req *http.Request) (*etherscanResponse, error) {
	resp, err := s.client.Do(req) //nolint:gosec // URL is constructed from configured explorer endpoint
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned HTTP %d", resp.StatusCode)
	}

	var result etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// etherscanResponse represents Etherscan API response
type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (r *etherscanResponse) message() string {
	if r.Result != "" {
		return r.Result
	}
	return r.Message
}

func isAlreadyVerified(result string) bool {
	return strings.Contains(strings.ToLower(result), "already verified")
}
