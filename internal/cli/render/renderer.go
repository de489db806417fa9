package render

import "github.com/trebuchet-org/mangonel/internal/usecase"

type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*usecase.RunDeployResult]        = (*DeployRenderer)(nil)
	_ Renderer[*usecase.ManageNodeResult]       = (*NodeRenderer)(nil)
	_ Renderer[*usecase.InitProjectResult]      = (*InitRenderer)(nil)
	_ Renderer[*usecase.ResetDeploymentsResult] = (*ResetRenderer)(nil)
)
