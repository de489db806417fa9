package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/adapters/fs"
	"github.com/trebuchet-org/mangonel/internal/adapters/progress"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize mangonel in the current directory",
		Long: `Create mangonel.toml, a first deploy script for EventContract,
an .env.example listing the keys to provide and the deployments directory.
Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd)
		},
	}

	return cmd
}

// runInit executes the init command. It runs before any project exists, so
// it builds its use case directly instead of going through the app.
func runInit(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	initProject := usecase.NewInitProject(fs.NewFileWriterAdapter(cwd), progress.NewNopSink())
	renderer := render.NewInitRenderer(cmd.OutOrStdout())

	result, err := initProject.Execute(cmd.Context())
	if err != nil {
		// Still render partial results even on error
		if result != nil {
			_ = renderer.Render(result)
		}
		return err
	}

	return renderer.Render(result)
}
