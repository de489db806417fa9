package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// ResetRenderer renders the records removed by a reset
type ResetRenderer struct {
	out io.Writer
}

// NewResetRenderer creates a new reset renderer
func NewResetRenderer(out io.Writer) *ResetRenderer {
	return &ResetRenderer{out: out}
}

// Render lists the deleted records
func (r *ResetRenderer) Render(result *usecase.ResetDeploymentsResult) error {
	if len(result.Deleted) == 0 {
		color.New(color.FgYellow).Fprintf(r.out, "No deployments recorded for %s\n", result.Network)
		return nil
	}

	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "%s %d deployment(s) from %s:\n", verb, len(result.Deleted), result.Network)
	for _, dep := range result.Deleted {
		fmt.Fprintf(r.out, "  - %s %s\n", dep.Name, addressStyle.Sprint(dep.Address))
	}
	return nil
}
