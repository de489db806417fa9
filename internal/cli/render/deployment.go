package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const timeLayout = "2006-01-02 15:04:05"

// DeploymentRenderer renders detailed information about a single deployment
type DeploymentRenderer struct {
	out   io.Writer
	color bool
}

// NewDeploymentRenderer creates a new deployment renderer
func NewDeploymentRenderer(out io.Writer, color bool) *DeploymentRenderer {
	return &DeploymentRenderer{
		out:   out,
		color: color,
	}
}

// RenderDeployment renders detailed deployment information
func (r *DeploymentRenderer) RenderDeployment(result *usecase.ShowDeploymentResult) error {
	deployment := result.Deployment

	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Deployment: %s/%s\n", deployment.Network, deployment.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nBasic Information:")
	fmt.Fprintf(r.out, "  Contract: %s\n", color.New(color.FgYellow).Sprint(deployment.ContractName))
	fmt.Fprintf(r.out, "  Address: %s\n", deployment.Address)
	fmt.Fprintf(r.out, "  Kind: %s\n", kindLabel(deployment.Kind))
	fmt.Fprintf(r.out, "  Network: %s (chain %d)\n", deployment.Network, deployment.ChainID)
	if deployment.Script != "" {
		fmt.Fprintf(r.out, "  Script: %s\n", deployment.Script)
	}
	fmt.Fprintf(r.out, "  Deployments: %d\n", deployment.NumDeployments)
	if len(deployment.Args) > 0 {
		fmt.Fprintf(r.out, "  Args: %s\n", formatArgs(deployment.Args))
	}

	if deployment.Proxy != nil {
		proxy := deployment.Proxy
		fmt.Fprintln(r.out, "\nProxy Information:")
		fmt.Fprintf(r.out, "  Kind: %s\n", proxy.Kind)
		if proxy.Address != "" && proxy.Address != deployment.Address {
			fmt.Fprintf(r.out, "  Proxy: %s\n", proxy.Address)
		}
		if result.Implementation != nil {
			fmt.Fprintf(r.out, "  Implementation: %s at %s\n",
				color.New(color.FgYellow, color.Bold).Sprint(result.Implementation.ContractName),
				proxy.Implementation,
			)
			fmt.Fprintf(r.out, "  Implementation Record: %s\n", color.New(color.FgCyan).Sprint(result.Implementation.Name))
		} else {
			fmt.Fprintf(r.out, "  Implementation: %s\n", proxy.Implementation)
		}
		if proxy.Owner != "" {
			fmt.Fprintf(r.out, "  Owner: %s\n", proxy.Owner)
		}
		if proxy.Admin != "" {
			fmt.Fprintf(r.out, "  Admin: %s\n", proxy.Admin)
		}
		if result.ProxyContract != nil {
			fmt.Fprintf(r.out, "  Proxy Contract: %s\n", result.ProxyContract.ContractName)
		}
	}

	if deployment.Execute != nil {
		fmt.Fprintln(r.out, "\nInitializer:")
		fmt.Fprintf(r.out, "  %s(%s)\n", deployment.Execute.MethodName, formatArgs(deployment.Execute.Args))
	}

	fmt.Fprintln(r.out, "\nArtifact Information:")
	if deployment.SourcePath != "" {
		fmt.Fprintf(r.out, "  Source: %s\n", deployment.SourcePath)
	}
	if deployment.CompilerVersion != "" {
		fmt.Fprintf(r.out, "  Compiler: %s\n", deployment.CompilerVersion)
	}
	if deployment.BytecodeHash != "" {
		fmt.Fprintf(r.out, "  Bytecode Hash: %s\n", deployment.BytecodeHash)
	}

	fmt.Fprintln(r.out, "\nVerification Status:")
	status := deployment.Verification.Status
	if status == "" {
		status = models.VerificationStatusUnverified
	}
	statusColor := color.FgRed
	if status == models.VerificationStatusVerified {
		statusColor = color.FgGreen
	}
	fmt.Fprintf(r.out, "  Status: %s\n", color.New(statusColor).Sprint(status))
	if deployment.Verification.URL != "" {
		fmt.Fprintf(r.out, "  Explorer: %s\n", deployment.Verification.URL)
	}
	if deployment.Verification.Reason != "" {
		fmt.Fprintf(r.out, "  Reason: %s\n", deployment.Verification.Reason)
	}
	if deployment.Verification.VerifiedAt != nil {
		fmt.Fprintf(r.out, "  Verified At: %s\n", deployment.Verification.VerifiedAt.Format(timeLayout))
	}

	if receipt := deployment.Receipt; receipt != nil {
		fmt.Fprintln(r.out, "\nTransaction Information:")
		fmt.Fprintf(r.out, "  Hash: %s\n", receipt.TransactionHash)
		fmt.Fprintf(r.out, "  From: %s\n", receipt.From)
		fmt.Fprintf(r.out, "  Block: %d\n", receipt.BlockNumber)
		fmt.Fprintf(r.out, "  Gas Used: %d\n", receipt.GasUsed)
	} else if deployment.TransactionHash != "" {
		fmt.Fprintln(r.out, "\nTransaction Information:")
		fmt.Fprintf(r.out, "  Hash: %s\n", deployment.TransactionHash)
	}

	fmt.Fprintln(r.out, "\nTimestamps:")
	fmt.Fprintf(r.out, "  Created: %s\n", deployment.CreatedAt.Format(timeLayout))
	fmt.Fprintf(r.out, "  Updated: %s\n", deployment.UpdatedAt.Format(timeLayout))

	return nil
}

// kindLabel turns PROXY_CONTRACT into "Proxy Contract"
func kindLabel(kind models.DeploymentKind) string {
	words := strings.ReplaceAll(strings.ToLower(string(kind)), "_", " ")
	return cases.Title(language.English).String(words)
}

func formatArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			parts = append(parts, v)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprint(v))
				continue
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, ", ")
}
