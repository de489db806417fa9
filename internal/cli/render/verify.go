package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

const alreadyVerified = "Already verified. Use --force to re-verify."

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// RenderVerifyAllResult renders the result of verifying all deployments
func (r *VerifyRenderer) RenderVerifyAllResult(result *usecase.VerifyAllResult, options usecase.VerifyOptions) error {
	if len(result.Skipped) > 0 {
		color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Skipping %d contracts:\n", len(result.Skipped))
		for _, skipped := range result.Skipped {
			fmt.Fprintf(r.out, "  ⏭️  %s/%s (%s)\n",
				skipped.Deployment.Network,
				skipped.Deployment.Name,
				skipped.Reason,
			)
		}
		fmt.Fprintln(r.out)
	}

	if len(result.Results) == 0 {
		if options.Force {
			color.New(color.FgYellow).Fprintln(r.out, "No deployed contracts found to verify.")
		} else {
			color.New(color.FgYellow).Fprintln(r.out, "No unverified deployed contracts found. Use --force to re-verify all contracts.")
		}
		return nil
	}

	if options.Force {
		color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Verified %d deployed contracts (including verified ones with --force):\n", len(result.Results))
	} else {
		color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Verified %d unverified deployed contracts:\n", len(result.Results))
	}

	for i, verifyResult := range result.Results {
		r.renderOne(verifyResult, "  ")
		if i < len(result.Results)-1 {
			fmt.Fprintln(r.out)
		}
	}

	fmt.Fprintf(r.out, "\nVerification complete: %d/%d successful\n", result.SuccessCount, len(result.Results))
	return nil
}

// RenderVerifyResults renders the records verified for one deployment reference
func (r *VerifyRenderer) RenderVerifyResults(results []*usecase.VerifyResult) error {
	for _, result := range results {
		if result.Success && len(result.Errors) == 1 && result.Errors[0] == alreadyVerified {
			color.New(color.FgYellow).Fprintf(r.out, "Contract %s is already verified. Use --force to re-verify.\n", result.Deployment.Name)
			continue
		}
		r.renderOne(result, "")
	}
	return nil
}

func (r *VerifyRenderer) renderOne(result *usecase.VerifyResult, indent string) {
	deployment := result.Deployment
	fmt.Fprintf(r.out, "%s%s %s/%s (%s)\n",
		indent,
		statusIcon(deployment.Verification.Status),
		deployment.Network,
		deployment.Name,
		deployment.ContractName,
	)

	if result.Success {
		color.New(color.FgGreen).Fprintf(r.out, "%s  ✓ Verification completed\n", indent)
		if deployment.Verification.URL != "" {
			fmt.Fprintf(r.out, "%s    %s\n", indent, deployment.Verification.URL)
		}
		return
	}
	for _, err := range result.Errors {
		color.New(color.FgRed).Fprintf(r.out, "%s  ✗ %s\n", indent, strings.TrimSpace(err))
	}
}

func statusIcon(status models.VerificationStatus) string {
	switch status {
	case models.VerificationStatusVerified:
		return "✅"
	case models.VerificationStatusFailed:
		return "⚠️"
	default:
		return "⏳"
	}
}
