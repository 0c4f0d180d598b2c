package service

import (
	"context"
	"log/slog"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/homepage"
	"github.com/visitgevgelija/guide-server/internal/search"
	"github.com/visitgevgelija/guide-server/internal/sse"
)

// HomepageService serves the cached homepage snapshot.
type HomepageService struct {
	homepage *homepage.Service
}

// NewHomepageService creates a homepage service.
func NewHomepageService(hp *homepage.Service) *HomepageService {
	return &HomepageService{homepage: hp}
}

// Snapshot returns the cached snapshot, loading all sections on first use.
func (s *HomepageService) Snapshot(ctx context.Context) (*homepage.Snapshot, error) {
	return s.homepage.Snapshot(ctx)
}

// Broadcaster sends an event to every connected client.
type Broadcaster interface {
	Broadcast(eventType sse.EventType, data any)
}

// CatalogService owns the derived state built from the datasets and drops it
// when the data changes.
type CatalogService struct {
	catalog     *catalog.Catalog
	search      *search.Aggregator
	homepage    *homepage.Cache
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewCatalogService creates a catalog service. broadcaster may be nil.
func NewCatalogService(cat *catalog.Catalog, agg *search.Aggregator, cache *homepage.Cache, broadcaster Broadcaster, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		catalog:     cat,
		search:      agg,
		homepage:    cache,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Datasets returns the manifest in declaration order.
func (s *CatalogService) Datasets() []catalog.Dataset {
	return s.catalog.Manifest().Datasets
}

// Collisions reports listing ids shared by more than one routed dataset.
func (s *CatalogService) Collisions(ctx context.Context) ([]catalog.Collision, error) {
	return s.catalog.Collisions(ctx)
}

// DataChanged drops the search entries and the homepage snapshot and tells
// clients to refetch. files are the changed dataset file names.
func (s *CatalogService) DataChanged(files []string) {
	s.search.Reset()
	s.homepage.Clear()
	s.logger.Info("catalog invalidated", "files", files)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(sse.EventCatalogChanged, sse.CatalogChangedEventData{Files: files})
	}
}
