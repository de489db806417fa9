package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// ErrNonInteractive is returned when a prompt is needed in non-interactive mode
var ErrNonInteractive = errors.New("interactive selection not available in non-interactive mode")

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	nonInteractive bool
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{nonInteractive: cfg.NonInteractive}
}

// SelectDeployment selects a deployment from a list
func (s *SelectorAdapter) SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error) {
	if len(deployments) == 0 {
		return nil, fmt.Errorf("no deployments provided for selection")
	}

	// If only one match, return it directly
	if len(deployments) == 1 {
		return deployments[0], nil
	}

	if s.nonInteractive {
		return nil, ErrNonInteractive
	}

	options := formatDeploymentOptions(deployments)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return deployments[index], nil
}

// SelectScripts lets the user untick deploy scripts before a run
func (s *SelectorAdapter) SelectScripts(ctx context.Context, scripts []*models.DeployScript) ([]*models.DeployScript, error) {
	if s.nonInteractive {
		return nil, ErrNonInteractive
	}
	if len(scripts) <= 1 {
		return scripts, nil
	}

	indices, err := MultiSelect(formatScriptOptions(scripts), "Select deploy scripts to run")
	if err != nil {
		return nil, err
	}

	selected := make([]*models.DeployScript, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, scripts[i])
	}
	return selected, nil
}

// Confirm asks a yes/no question; non-interactive sessions never confirm
func (s *SelectorAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if s.nonInteractive {
		return false, ErrNonInteractive
	}

	confirm := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}

	_, err := confirm.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, err
	}
}

// formatDeploymentOptions creates display strings for deployment selection
func formatDeploymentOptions(deployments []*models.Deployment) []string {
	options := make([]string, len(deployments))
	for i, dep := range deployments {
		name := color.New(color.FgWhite, color.Bold).Sprint(dep.Name)
		address := color.New(color.FgBlue).Sprint(dep.Address)
		options[i] = fmt.Sprintf("%s %s (%s)", name, address, dep.Network)
	}
	return options
}

func formatScriptOptions(scripts []*models.DeployScript) []string {
	options := make([]string, len(scripts))
	for i, script := range scripts {
		names := make([]string, 0, len(script.Deployments))
		for _, step := range script.Deployments {
			names = append(names, step.Name)
		}
		options[i] = fmt.Sprintf("%s %s %s",
			script.ID,
			color.New(color.FgYellow).Sprintf("[%s]", strings.Join(script.Tags, ", ")),
			strings.Join(names, ", "))
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

var (
	_ usecase.DeploymentSelector = (*SelectorAdapter)(nil)
	_ usecase.ScriptSelector     = (*SelectorAdapter)(nil)
	_ usecase.Confirmer          = (*SelectorAdapter)(nil)
)
