package render

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// Color styles for table format
var (
	networkBg          = color.BgCyan
	networkHeader      = color.New(networkBg, color.FgBlack)
	networkHeaderBold  = color.New(networkBg, color.FgBlack, color.Bold)
	addressStyle       = color.New(color.FgWhite)
	timestampStyle     = color.New(color.Faint)
	verifiedStyle      = color.New(color.FgGreen)
	notVerifiedStyle   = color.New(color.FgRed)
	pendingStyle       = color.New(color.FgYellow)
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	implPrefixStyle    = color.New(color.Faint)
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[mGKHF]`)

type TableData [][]string

// section is one group of records shown under a heading
type section struct {
	title       string
	deployments []*models.Deployment
}

// DeploymentsRenderer renders deployment lists as formatted tables with tree-style layout
type DeploymentsRenderer struct {
	out   io.Writer
	color bool
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer, color bool) *DeploymentsRenderer {
	return &DeploymentsRenderer{
		out:   out,
		color: color,
	}
}

// RenderDeploymentList renders deployments grouped by network
func (r *DeploymentsRenderer) RenderDeploymentList(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	byNetwork := lo.GroupBy(result.Deployments, func(d *models.Deployment) string { return d.Network })
	networks := lo.Keys(byNetwork)
	sort.Strings(networks)

	// Build every table first so columns line up across networks
	sectionsByNetwork := make(map[string][]section, len(networks))
	var allTables []TableData
	for _, network := range networks {
		sections := splitSections(byNetwork[network])
		sectionsByNetwork[network] = sections
		for _, s := range sections {
			allTables = append(allTables, r.buildDeploymentTable(s.deployments))
		}
	}
	widths := calculateTableColumnWidths(allTables)

	for idx, network := range networks {
		deployments := byNetwork[network]
		isLast := idx == len(networks)-1
		treePrefix, continuationPrefix := "├─", "│ "
		if isLast {
			treePrefix, continuationPrefix = "└─", "  "
		}

		label := fmt.Sprintf("%-10s", "network:")
		value := fmt.Sprintf("%-30s", fmt.Sprintf("%s (%d)", network, deployments[0].ChainID))
		fmt.Fprintf(r.out, "%s%s%s\n", treePrefix, networkHeader.Sprintf(" ⛓ %s ", label), networkHeaderBold.Sprint(value))
		fmt.Fprintln(r.out, continuationPrefix)

		for i, s := range sectionsByNetwork[network] {
			if i > 0 {
				fmt.Fprintln(r.out, continuationPrefix)
			}
			fmt.Fprintf(r.out, "%s%s\n", continuationPrefix, sectionHeaderStyle.Sprint(s.title))
			fmt.Fprint(r.out, renderTableWithWidths(r.buildDeploymentTable(s.deployments), widths, continuationPrefix))
			fmt.Fprintln(r.out)
		}

		if isLast {
			fmt.Fprintln(r.out)
		} else {
			fmt.Fprintln(r.out, continuationPrefix)
		}
	}

	fmt.Fprintf(r.out, "Total deployments: %d\n", result.Summary.Total)
	return nil
}

// splitSections orders a network's records as proxies, implementations,
// proxy contracts and singletons, dropping empty groups
func splitSections(deployments []*models.Deployment) []section {
	byKind := lo.GroupBy(deployments, func(d *models.Deployment) models.DeploymentKind { return d.Kind })
	all := []section{
		{title: "PROXIES", deployments: byKind[models.ProxyDeployment]},
		{title: "IMPLEMENTATIONS", deployments: byKind[models.ImplementationDeployment]},
		{title: "PROXY CONTRACTS", deployments: byKind[models.ProxyContractDeployment]},
		{title: "SINGLETONS", deployments: byKind[models.SingletonDeployment]},
	}
	return lo.Filter(all, func(s section, _ int) bool { return len(s.deployments) > 0 })
}

// buildDeploymentTable creates a TableData for a list of deployments
func (r *DeploymentsRenderer) buildDeploymentTable(deployments []*models.Deployment) TableData {
	sorted := make([]*models.Deployment, len(deployments))
	copy(sorted, deployments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	tableData := make(TableData, 0, len(sorted))
	for _, deployment := range sorted {
		tableData = append(tableData, []string{
			r.getColoredDisplayName(deployment),
			addressStyle.Sprint(deployment.Address),
			r.getVerificationStatus(deployment),
			timestampStyle.Sprint(deployment.UpdatedAt.Format(timeLayout)),
		})

		if deployment.Proxy != nil {
			tableData = append(tableData, []string{
				implPrefixStyle.Sprintf("└─ %s", shortAddress(deployment.Proxy.Implementation)),
				"",
				"",
				"",
			})
		}
	}

	return tableData
}

func (r *DeploymentsRenderer) getVerificationStatus(deployment *models.Deployment) string {
	switch deployment.Verification.Status {
	case models.VerificationStatusVerified:
		return verifiedStyle.Sprint("✓ verified")
	case models.VerificationStatusFailed:
		return notVerifiedStyle.Sprint("✗ failed")
	default:
		if deployment.TransactionHash == "" {
			return pendingStyle.Sprint("? no tx")
		}
		return "? unverified"
	}
}

// getColoredDisplayName returns a colored display name for deployment
func (r *DeploymentsRenderer) getColoredDisplayName(dep *models.Deployment) string {
	name := dep.Name
	if dep.ContractName != "" && dep.ContractName != dep.Name {
		name = fmt.Sprintf("%s (%s)", dep.Name, dep.ContractName)
	}

	switch dep.Kind {
	case models.ProxyDeployment:
		return color.New(color.FgMagenta, color.Bold).Sprint(name)
	case models.ImplementationDeployment, models.ProxyContractDeployment:
		return color.New(color.FgBlue).Sprint(name)
	default:
		return color.New(color.FgGreen, color.Bold).Sprint(name)
	}
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:10] + "..."
}

// renderTableWithWidths renders a table with specific column widths
func renderTableWithWidths(tableData TableData, columnWidths []int, continuationPrefix string) string {
	if len(tableData) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}

	colConfigs := make([]table.ColumnConfig, len(columnWidths))
	for i, width := range columnWidths {
		if i == 0 {
			width += 2 + len([]rune(continuationPrefix))
		}
		colConfigs[i] = table.ColumnConfig{
			Number:   i + 1,
			Align:    text.AlignLeft,
			WidthMin: width,
			WidthMax: width,
		}
	}
	t.SetColumnConfigs(colConfigs)

	for _, row := range tableData {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			if i == 0 {
				tableRow[i] = continuationPrefix + cell
			} else {
				tableRow[i] = cell
			}
		}
		t.AppendRow(tableRow)
	}

	return t.Render()
}

// stripAnsiCodes removes ANSI escape sequences from a string
func stripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// calculateTableColumnWidths calculates column widths for multiple tables
func calculateTableColumnWidths(tables []TableData) []int {
	maxCols := 0
	for _, t := range tables {
		for _, row := range t {
			maxCols = max(maxCols, len(row))
		}
	}

	widths := make([]int, maxCols)
	for _, t := range tables {
		for _, row := range t {
			for colIdx, cell := range row {
				widths[colIdx] = max(widths[colIdx], len([]rune(stripAnsiCodes(cell))))
			}
		}
	}

	return widths
}

