// Package providers contains dependency injection providers for the guide server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/visitgevgelija/guide-server/internal/config"
	"github.com/visitgevgelija/guide-server/internal/logger"
	"github.com/visitgevgelija/guide-server/internal/metrics"
	"github.com/visitgevgelija/guide-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting guide server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Catalog.DataPath,
		"base_url", cfg.Catalog.BaseURL,
		"storage", cfg.Storage.Backend,
	)

	return log, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
