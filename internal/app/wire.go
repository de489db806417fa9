//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/mangonel/internal/adapters"
	"github.com/trebuchet-org/mangonel/internal/config"
	"github.com/trebuchet-org/mangonel/internal/logging"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRunDeploy,
		usecase.NewListDeployments,
		usecase.NewShowDeployment,
		usecase.NewExportDeployments,
		usecase.NewResetDeployments,
		usecase.NewVerifyDeployment,
		usecase.NewListNetworks,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,
		usecase.NewManageNode,

		// App
		NewApp,
	)
	return nil, nil
}
