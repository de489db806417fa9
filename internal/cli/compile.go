package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
)

// NewCompileCmd creates the compile command
func NewCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "compile",
		Aliases: []string{"build"},
		Short:   "Compile the project's contracts",
		Long: `Run the build command from [compiler] in mangonel.toml ("forge build" by
default) with the configured solc version and optimizer settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if err := app.Compiler.Build(cmd.Context()); err != nil {
				return fmt.Errorf("compilation failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess("Compilation finished"))
			return nil
		},
	}
}
