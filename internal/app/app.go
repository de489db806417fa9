package app

import (
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Selector  usecase.DeploymentSelector
	Confirmer usecase.Confirmer
	Compiler  usecase.Compiler

	// Use cases
	RunDeploy         *usecase.RunDeploy
	ListDeployments   *usecase.ListDeployments
	ShowDeployment    *usecase.ShowDeployment
	ExportDeployments *usecase.ExportDeployments
	ResetDeployments  *usecase.ResetDeployments
	VerifyDeployment  *usecase.VerifyDeployment
	ListNetworks      *usecase.ListNetworks
	ShowConfig        *usecase.ShowConfig
	SetConfig         *usecase.SetConfig
	RemoveConfig      *usecase.RemoveConfig
	ManageNode        *usecase.ManageNode
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	selector usecase.DeploymentSelector,
	confirmer usecase.Confirmer,
	compiler usecase.Compiler,
	runDeploy *usecase.RunDeploy,
	listDeployments *usecase.ListDeployments,
	showDeployment *usecase.ShowDeployment,
	exportDeployments *usecase.ExportDeployments,
	resetDeployments *usecase.ResetDeployments,
	verifyDeployment *usecase.VerifyDeployment,
	listNetworks *usecase.ListNetworks,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
	manageNode *usecase.ManageNode,
) (*App, error) {
	return &App{
		Config:            cfg,
		Selector:          selector,
		Confirmer:         confirmer,
		Compiler:          compiler,
		RunDeploy:         runDeploy,
		ListDeployments:   listDeployments,
		ShowDeployment:    showDeployment,
		ExportDeployments: exportDeployments,
		ResetDeployments:  resetDeployments,
		VerifyDeployment:  verifyDeployment,
		ListNetworks:      listNetworks,
		ShowConfig:        showConfig,
		SetConfig:         setConfig,
		RemoveConfig:      removeConfig,
		ManageNode:        manageNode,
	}, nil
}
