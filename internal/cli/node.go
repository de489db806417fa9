package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/mangonel/internal/cli/render"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NewNodeCmd creates the node command with subcommands
func NewNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage a local anvil node",
		Long: `Start, stop and inspect a local anvil node to rehearse deployments
against the "localhost" network, optionally forking a live network.`,
	}

	cmd.AddCommand(newNodeOpCmd(usecase.NodeStart, "Start the local node", "Start a local anvil node. Fails if already running."))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeStop, "Stop the local node", "Stop the local anvil node if running."))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeRestart, "Restart the local node", "Stop and start the local anvil node."))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeStatus, "Show node status", "Show status and RPC health of the local anvil node."))
	cmd.AddCommand(newNodeOpCmd(usecase.NodeLogs, "Stream node logs", "Follow the log file of the local anvil node."))

	return cmd
}

// nodeFlags holds common flags for node commands
type nodeFlags struct {
	name    string
	port    string
	chainID string
	forkURL string
}

// addNodeFlags adds common flags to a node command
func addNodeFlags(cmd *cobra.Command, flags *nodeFlags) {
	cmd.Flags().StringVar(&flags.name, "name", "anvil", "Instance name")
	cmd.Flags().StringVar(&flags.port, "port", "8545", "RPC port to bind")
	cmd.Flags().StringVar(&flags.chainID, "chain-id", "", "Chain ID to use for the instance (optional)")
	cmd.Flags().StringVar(&flags.forkURL, "fork-url", "", "RPC URL of a network to fork (optional)")
}

func newNodeOpCmd(op usecase.NodeOperation, short, long string) *cobra.Command {
	flags := &nodeFlags{}

	cmd := &cobra.Command{
		Use:   string(op),
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodeCommand(cmd, op, flags)
		},
	}

	addNodeFlags(cmd, flags)
	return cmd
}

// runNodeCommand executes a node operation and renders the outcome
func runNodeCommand(cmd *cobra.Command, op usecase.NodeOperation, flags *nodeFlags) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}

	renderer := render.NewNodeRenderer(cmd.OutOrStdout())
	params := usecase.ManageNodeParams{
		Operation: op,
		Name:      flags.name,
		Port:      flags.port,
		ChainID:   flags.chainID,
		ForkURL:   flags.forkURL,
	}

	if op == usecase.NodeLogs {
		renderer.RenderLogsHeader(flags.name)
		params.LogWriter = cmd.OutOrStdout()
		_, err := app.ManageNode.Run(cmd.Context(), params)
		return err
	}

	result, err := app.ManageNode.Run(cmd.Context(), params)
	if err != nil {
		return err
	}
	return renderer.Render(result)
}
