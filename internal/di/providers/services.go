package providers

import (
	"github.com/samber/do/v2"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/favorites"
	"github.com/visitgevgelija/guide-server/internal/homepage"
	"github.com/visitgevgelija/guide-server/internal/logger"
	"github.com/visitgevgelija/guide-server/internal/metrics"
	"github.com/visitgevgelija/guide-server/internal/preferences"
	"github.com/visitgevgelija/guide-server/internal/search"
	"github.com/visitgevgelija/guide-server/internal/service"
	"github.com/visitgevgelija/guide-server/internal/shuffle"
	"github.com/visitgevgelija/guide-server/internal/validation"
)

// ProvideListingService provides the listing service.
func ProvideListingService(i do.Injector) (*service.ListingService, error) {
	cat := do.MustInvoke[*catalog.Catalog](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewListingService(cat, shuffle.System, log.Logger), nil
}

// ProvideFavoriteService provides the favorites service.
func ProvideFavoriteService(i do.Injector) (*service.FavoriteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	favs := favorites.NewService(storeHandle.KV, sseHandle.Manager, m, log.Logger)
	return service.NewFavoriteService(favs, cat, v, log.Logger), nil
}

// ProvidePreferenceService provides the preferences service.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	prefs := preferences.NewService(storeHandle.KV, v, sseHandle.Manager, log.Logger)
	return service.NewPreferenceService(prefs, log.Logger), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	agg := do.MustInvoke[*search.Aggregator](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	return service.NewSearchService(agg, cat.Manifest()), nil
}

// ProvideHomepageService provides the homepage service.
func ProvideHomepageService(i do.Injector) (*service.HomepageService, error) {
	hp := do.MustInvoke[*homepage.Service](i)
	return service.NewHomepageService(hp), nil
}

// ProvideCatalogService provides the catalog service, which drops cached
// search entries and homepage snapshots when the data changes.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cat := do.MustInvoke[*catalog.Catalog](i)
	agg := do.MustInvoke[*search.Aggregator](i)
	hp := do.MustInvoke[*homepage.Service](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(cat, agg, hp.Cache(), sseHandle.Manager, log.Logger), nil
}
