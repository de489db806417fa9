package domain

import "github.com/trebuchet-org/mangonel/internal/domain/models"

// DeploymentFilter defines filtering options for deployments
type DeploymentFilter struct {
	Network string
	Name    string
	Kind    models.DeploymentKind
}
