package scripts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
	"gopkg.in/yaml.v3"
)

// Loader reads declarative deploy scripts from the deploy directory
type Loader struct {
	deployDir string
}

// NewLoader creates a new deploy script loader
func NewLoader(cfg *config.RuntimeConfig) *Loader {
	return &Loader{deployDir: cfg.DeployDir}
}

// LoadScripts parses every *.yaml and *.yml file of the deploy directory,
// sorted by file name
func (l *Loader) LoadScripts(ctx context.Context) ([]*models.DeployScript, error) {
	entries, err := os.ReadDir(l.deployDir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("deploy directory not found: %s", l.deployDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deploy directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	scripts := make([]*models.DeployScript, 0, len(files))
	for _, file := range files {
		script, err := ParseFile(filepath.Join(l.deployDir, file))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}

	return scripts, nil
}

// SelectScripts picks the scripts to run for the given tags
func (l *Loader) SelectScripts(scripts []*models.DeployScript, tags []string) ([]*models.DeployScript, error) {
	return Select(scripts, tags)
}

// ParseFile parses a deploy script from a YAML file
func ParseFile(path string) (*models.DeployScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deploy script: %w", err)
	}

	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	script.Path = path
	script.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return script, nil
}

// Parse parses a deploy script from YAML data
func Parse(data []byte) (*models.DeployScript, error) {
	var script models.DeployScript

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&script); err != nil {
		return nil, fmt.Errorf("invalid deploy script: %w", err)
	}

	return &script, nil
}

// Validate checks a deploy script for errors and fills proxy defaults
func Validate(script *models.DeployScript) error {
	if len(script.Deployments) == 0 {
		return fmt.Errorf("at least one deployment is required")
	}

	seen := make(map[string]bool)
	for i := range script.Deployments {
		step := &script.Deployments[i]

		if step.Name == "" {
			return fmt.Errorf("deployment #%d must have a name", i+1)
		}
		if strings.ContainsAny(step.Name, `/\`) || strings.Contains(step.Name, "..") {
			return fmt.Errorf("deployment name '%s' must not contain path separators or '..'", step.Name)
		}
		if seen[step.Name] {
			return fmt.Errorf("deployment '%s' is declared twice", step.Name)
		}
		seen[step.Name] = true

		if step.From == "" {
			return fmt.Errorf("deployment '%s' must specify 'from'", step.Name)
		}

		if step.Proxy != nil {
			if step.Proxy.Kind == "" {
				step.Proxy.Kind = models.TransparentProxy
			}
			if !step.Proxy.Kind.Valid() {
				return fmt.Errorf("deployment '%s' has unknown proxy kind '%s'", step.Name, step.Proxy.Kind)
			}
			if init := step.Initializer(); init != nil && init.Method == "" {
				return fmt.Errorf("deployment '%s' has an init call without a method", step.Name)
			}
		}
	}

	for _, dep := range script.Dependencies {
		if script.HasTag(dep) {
			return fmt.Errorf("script cannot depend on its own tag '%s'", dep)
		}
	}

	return nil
}

// Select returns the scripts to run for the given tags in execution order.
// With no tags every script runs. Scripts providing a selected script's
// dependency tags run before it, each script at most once.
func Select(scripts []*models.DeployScript, tags []string) ([]*models.DeployScript, error) {
	var roots []*models.DeployScript
	if len(tags) == 0 {
		roots = scripts
	} else {
		for _, script := range scripts {
			if script.HasTag(tags...) {
				roots = append(roots, script)
			}
		}
		if len(roots) == 0 {
			return nil, fmt.Errorf("%w tags %s", domain.ErrNoScriptsMatch, strings.Join(tags, ", "))
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var ordered []*models.DeployScript

	var visit func(script *models.DeployScript, path []string) error
	visit = func(script *models.DeployScript, path []string) error {
		switch state[script.ID] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", domain.ErrDependencyCycle, strings.Join(append(path, script.ID), " -> "))
		}
		state[script.ID] = visiting
		path = append(path, script.ID)

		for _, dep := range script.Dependencies {
			providers := providersOf(scripts, dep)
			if len(providers) == 0 {
				return fmt.Errorf("script '%s' depends on tag '%s' which no script provides", script.ID, dep)
			}
			for _, provider := range providers {
				if err := visit(provider, path); err != nil {
					return err
				}
			}
		}

		state[script.ID] = done
		ordered = append(ordered, script)
		return nil
	}

	for _, script := range roots {
		if err := visit(script, nil); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}

func providersOf(scripts []*models.DeployScript, tag string) []*models.DeployScript {
	var providers []*models.DeployScript
	for _, script := range scripts {
		if script.HasTag(tag) {
			providers = append(providers, script)
		}
	}
	return providers
}

var _ usecase.ScriptRepository = (*Loader)(nil)
