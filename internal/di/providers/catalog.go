package providers

import (
	"github.com/samber/do/v2"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/config"
	"github.com/visitgevgelija/guide-server/internal/homepage"
	"github.com/visitgevgelija/guide-server/internal/logger"
	"github.com/visitgevgelija/guide-server/internal/metrics"
	"github.com/visitgevgelija/guide-server/internal/search"
)

// ProvideCatalog provides the dataset catalog, reading from the data
// directory when one is configured and from the static site otherwise.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	var source catalog.Source
	if cfg.Catalog.DataPath != "" {
		source = catalog.NewDirSource(cfg.Catalog.DataPath)
	} else {
		source = catalog.NewHTTPSource(cfg.Catalog.BaseURL, catalog.NewHTTPClient(cfg.Catalog.FetchTimeout))
	}

	manifest := catalog.DefaultManifest()
	log.Info("Catalog ready",
		"source", source.Describe(),
		"datasets", len(manifest.Datasets),
	)

	return catalog.New(manifest, source, m, log.Logger), nil
}

// ProvideSearchAggregator provides the search aggregator. It loads lazily on
// the first query.
func ProvideSearchAggregator(i do.Injector) (*search.Aggregator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	cat := do.MustInvoke[*catalog.Catalog](i)

	return search.NewAggregator(cat, search.Options{
		Recorder: m,
		Timeout:  cfg.Catalog.FetchTimeout,
		Logger:   log.Logger,
	}), nil
}

// ProvideHomepage provides the homepage snapshot service and its cache.
func ProvideHomepage(i do.Injector) (*homepage.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	cat := do.MustInvoke[*catalog.Catalog](i)

	return homepage.NewService(cat, &homepage.Cache{}, m, cfg.Catalog.FetchTimeout, log.Logger), nil
}
