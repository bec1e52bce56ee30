//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/emulab/applianced/cmd/api/api"
	"github.com/emulab/applianced/lib/providers"
)

// initializeApp is the injector function
func initializeApp() (*application, func(), error) {
	panic(wire.Build(
		providers.ProvideContext,
		providers.ProvideLogger,
		providers.ProvideConfig,
		providers.ProvideMeter,
		providers.ProvideImportMetrics,
		providers.ProvideScanMetrics,
		providers.ProvideComputeMetrics,
		providers.ProvideStore,
		providers.ProvideRegistry,
		providers.ProvideTemplateManager,
		providers.ProvideComputeClient,
		api.New,
		wire.Struct(new(application), "*"),
	))
}
