package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// InitRenderer renders init command results
type InitRenderer struct {
	out io.Writer
}

// NewInitRenderer creates a new init renderer
func NewInitRenderer(out io.Writer) *InitRenderer {
	return &InitRenderer{out: out}
}

// Render renders the init project result
func (r *InitRenderer) Render(result *usecase.InitProjectResult) error {
	failed := false
	for _, step := range result.Steps {
		if step.Success {
			msg := step.Name
			if step.Message != "" {
				msg = step.Message
			}
			color.New(color.FgGreen).Fprintf(r.out, "✅ %s\n", msg)
			continue
		}

		failed = true
		color.New(color.FgRed).Fprintf(r.out, "❌ %s\n", step.Name)
		if step.Message != "" {
			fmt.Fprintf(r.out, "   %s\n", step.Message)
		}
		if step.Error != nil {
			fmt.Fprintf(r.out, "   %s\n", step.Error.Error())
		}
	}

	if !failed {
		r.printSuccessMessage(result)
	}

	return nil
}

func (r *InitRenderer) printSuccessMessage(result *usecase.InitProjectResult) {
	hint := color.New(color.FgHiBlack)

	fmt.Fprintln(r.out)
	if result.AlreadyInitialized {
		color.New(color.FgYellow).Fprintln(r.out, "⚠️  mangonel was already initialized in this project")
	} else {
		color.New(color.FgGreen, color.Bold).Fprintln(r.out, "🎉 mangonel initialized successfully!")
	}

	fmt.Fprintln(r.out)
	color.New(color.FgCyan, color.Bold).Fprintln(r.out, "📋 Next steps:")

	fmt.Fprintln(r.out, "1. Copy .env.example to .env and fill in your keys:")
	fmt.Fprintln(r.out, "   • PRIVATE_KEY_SST for the deployer account")
	fmt.Fprintln(r.out, "   • ETHERSCAN_KEY_SST for contract verification")
	fmt.Fprintln(r.out)

	fmt.Fprintln(r.out, "2. Build the contracts and deploy:")
	hint.Fprintln(r.out, "   mangonel compile")
	hint.Fprintln(r.out, "   mangonel deploy --network sst")
	fmt.Fprintln(r.out)

	fmt.Fprintln(r.out, "3. Inspect and verify:")
	hint.Fprintln(r.out, "   mangonel list")
	hint.Fprintln(r.out, "   mangonel show EventContract")
	hint.Fprintln(r.out, "   mangonel verify --all")
}
