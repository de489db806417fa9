package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// DeployRenderer renders the outcome of a deploy run
type DeployRenderer struct {
	out     io.Writer
	verbose bool
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, verbose bool) *DeployRenderer {
	return &DeployRenderer{
		out:     out,
		verbose: verbose,
	}
}

// Render prints one row per deployment followed by the run summary
func (r *DeployRenderer) Render(result *usecase.RunDeployResult) error {
	if result.Network != nil {
		header := fmt.Sprintf("Network: %s (chain %d)", result.Network.Name, result.Network.ChainID)
		if result.DryRun {
			header += " [dry run]"
		}
		color.New(color.FgCyan, color.Bold).Fprintln(r.out, header)
	}

	if len(result.Results) == 0 {
		color.New(color.FgYellow).Fprintln(r.out, "Nothing to deploy")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Name", "Contract", "Address", "Gas"})

	for _, res := range result.Results {
		contract := res.Contract
		if res.ProxyKind != "" {
			contract = fmt.Sprintf("%s via %s", res.Contract, res.ProxyKind)
		}
		gas := ""
		if res.GasUsed > 0 {
			gas = fmt.Sprintf("%d", res.GasUsed)
		}
		t.AppendRow(table.Row{actionIcon(res.Action), res.Name, contract, res.Address, gas})

		if res.Kind == models.ProxyDeployment && res.Implementation != "" {
			t.AppendRow(table.Row{"", implPrefixStyle.Sprint("└─ implementation"), "", res.Implementation, ""})
		}
		if r.verbose && res.TxHash != "" {
			t.AppendRow(table.Row{"", implPrefixStyle.Sprint("└─ tx"), "", res.TxHash, ""})
		}
	}
	t.Render()

	summary := fmt.Sprintf("%d deployed, %d reused, %d skipped",
		result.Count(usecase.ActionDeployed),
		result.Count(usecase.ActionReused),
		result.Count(usecase.ActionSkipped),
	)
	if result.DryRun {
		summary = fmt.Sprintf("%d planned, %d reused, %d skipped",
			result.Count(usecase.ActionPlanned),
			result.Count(usecase.ActionReused),
			result.Count(usecase.ActionSkipped),
		)
	}
	fmt.Fprintln(r.out, FormatSuccess(summary))
	return nil
}

func actionIcon(action usecase.DeployAction) string {
	switch action {
	case usecase.ActionDeployed:
		return verifiedStyle.Sprint("✓")
	case usecase.ActionReused:
		return "↺"
	case usecase.ActionPlanned:
		return pendingStyle.Sprint("○")
	default:
		return timestampStyle.Sprint("-")
	}
}
