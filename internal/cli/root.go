package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/adapters/progress"
	"github.com/trebuchet-org/mangonel/internal/app"
	"github.com/trebuchet-org/mangonel/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// commands that run without a mangonel project
var projectless = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
	"init":       true,
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mangonel",
		Short: "Hardhat-style contract deployments for Foundry and Hardhat builds",
		Long: `Mangonel runs declarative deploy scripts against a configured network,
deploys contracts (optionally behind a proxy), keeps a JSON record per
deployment in deployments/<network>/ and verifies them on block explorers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if projectless[cmd.Name()] {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			sink := progress.NewSpinnerProgress(cmd.ErrOrStderr(), !isNonInteractive(cmd))

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output JSON where supported")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from mangonel.toml (e.g. sst)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewInitCmd(),
		NewCompileCmd(),
		NewDeployCmd(),
		NewListCmd(),
		NewShowCmd(),
		NewVerifyCmd(),
		NewExportCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewNetworksCmd(),
		NewConfigCmd(),
		NewNodeCmd(),
		NewResetCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// isNonInteractive checks the flag and the environment for a non-interactive session
func isNonInteractive(cmd *cobra.Command) bool {
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		return f.Value.String() == "true"
	}
	if f := cmd.Flag("json"); f != nil && f.Value.String() == "true" {
		return true
	}
	return os.Getenv("MANGONEL_NON_INTERACTIVE") == "true" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("NO_COLOR") != ""
}
