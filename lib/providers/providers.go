package providers

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/emulab/applianced/cmd/api/config"
	"github.com/emulab/applianced/lib/compute"
	"github.com/emulab/applianced/lib/images"
	"github.com/emulab/applianced/lib/logger"
	otelx "github.com/emulab/applianced/lib/otel"
	"github.com/emulab/applianced/lib/registry"
	"github.com/emulab/applianced/lib/templates"
)

// ProvideContext provides a base context
func ProvideContext() context.Context {
	return context.Background()
}

// ProvideLogger provides a structured logger
func ProvideLogger() *slog.Logger {
	return logger.New(logger.NewConfig())
}

// ProvideConfig provides the application configuration
func ProvideConfig() *config.Config {
	return config.Load()
}

// ProvideMeter provides the OTel meter for applianced instruments
func ProvideMeter() metric.Meter {
	return otel.Meter("applianced")
}

// ProvideImportMetrics provides metrics for the managed image store
func ProvideImportMetrics(meter metric.Meter) (*otelx.ImportMetrics, error) {
	return otelx.NewImportMetrics(meter)
}

// ProvideScanMetrics provides metrics for registry lookups
func ProvideScanMetrics(meter metric.Meter) (*otelx.ScanMetrics, error) {
	return otelx.NewScanMetrics(meter)
}

// ProvideComputeMetrics provides metrics for the compute client
func ProvideComputeMetrics(meter metric.Meter) (*otelx.ComputeMetrics, error) {
	return otelx.NewComputeMetrics(meter)
}

// ProvideStore provides the managed image store
func ProvideStore(cfg *config.Config, metrics *otelx.ImportMetrics) *images.Store {
	return images.NewStore(cfg.DataDir, metrics)
}

// ProvideRegistry provides the image registry over the configured search directories
func ProvideRegistry(cfg *config.Config, store *images.Store, log *slog.Logger, metrics *otelx.ScanMetrics) *registry.Registry {
	return registry.New(cfg.SearchDirs(store.Dir()), log, metrics)
}

// ProvideTemplateManager provides the template registry
func ProvideTemplateManager(cfg *config.Config, log *slog.Logger) (templates.Manager, error) {
	return templates.NewManager(cfg.SettingsPath, log)
}

// ProvideComputeClient provides the compute proxy client
func ProvideComputeClient(cfg *config.Config, log *slog.Logger, metrics *otelx.ComputeMetrics) *compute.Client {
	return compute.NewClient(cfg.ComputeURL, cfg.ComputeToken, log, metrics)
}
