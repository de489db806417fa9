package config

import (
	"time"

	"github.com/trebuchet-org/mangonel/internal/domain"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot    string
	DataDir        string // .mangonel
	DeployDir      string // deploy scripts
	DeploymentsDir string // deployment records

	// Context settings
	Network *domain.Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Deploy settings (only populated for the deploy command)
	DryRun      bool
	Reset       bool
	SkipCompile bool
	Tags        []string

	// Resolved configurations
	Project *ProjectConfig
}
