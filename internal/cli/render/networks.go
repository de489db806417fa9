package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out   io.Writer
	color bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, color bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:   out,
		color: color,
	}
}

// RenderNetworksList renders the configured networks
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in mangonel.toml [networks]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.AppendHeader(table.Row{"", "Network", "Chain ID", "Live", "Deployments", "RPC"})

	for _, network := range result.Networks {
		marker := ""
		if network.Name == result.Current {
			marker = r.paint(color.FgGreen, "●")
		}

		chainID := fmt.Sprintf("%d", network.ChainID)
		if network.RemoteChainID != 0 && network.RemoteChainID != network.ChainID {
			chainID = r.paint(color.FgRed, fmt.Sprintf("%d (rpc: %d)", network.ChainID, network.RemoteChainID))
		}

		live := "no"
		if network.Live {
			live = r.paint(color.FgYellow, "yes")
		}

		rpc := network.RPCURL
		if network.Error != nil {
			rpc = r.paint(color.FgRed, fmt.Sprintf("❌ %v", network.Error))
		}

		t.AppendRow(table.Row{marker, network.Name, chainID, live, network.Deployments, rpc})
	}

	t.Render()
	return nil
}

func (r *NetworksRenderer) paint(attr color.Attribute, s string) string {
	if !r.color {
		return s
	}
	return color.New(attr).Sprint(s)
}
