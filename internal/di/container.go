// Package di provides dependency injection configuration for the guide server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/config"
	"github.com/visitgevgelija/guide-server/internal/di/providers"
	"github.com/visitgevgelija/guide-server/internal/homepage"
	"github.com/visitgevgelija/guide-server/internal/logger"
	"github.com/visitgevgelija/guide-server/internal/metrics"
	"github.com/visitgevgelija/guide-server/internal/search"
	"github.com/visitgevgelija/guide-server/internal/service"
	"github.com/visitgevgelija/guide-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Storage and events
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideSearchAggregator)
	do.Provide(injector, providers.ProvideHomepage)

	// Business services
	do.Provide(injector, providers.ProvideListingService)
	do.Provide(injector, providers.ProvideFavoriteService)
	do.Provide(injector, providers.ProvidePreferenceService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideHomepageService)
	do.Provide(injector, providers.ProvideCatalogService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*catalog.Catalog](injector)
	_ = do.MustInvoke[*search.Aggregator](injector)
	_ = do.MustInvoke[*homepage.Service](injector)

	// Business services
	_ = do.MustInvoke[*service.ListingService](injector)
	_ = do.MustInvoke[*service.FavoriteService](injector)
	_ = do.MustInvoke[*service.PreferenceService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.HomepageService](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)

	// Workers
	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
