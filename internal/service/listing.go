// Package service orchestrates the guide's domain packages for the API.
package service

import (
	"context"
	"log/slog"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/domain"
	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/shuffle"
)

// ListingOrder selects how a category page is ordered.
type ListingOrder string

const (
	// OrderFeatured puts premium listings first, each tier shuffled.
	OrderFeatured ListingOrder = "featured"
	// OrderSource keeps dataset file order.
	OrderSource ListingOrder = "source"
)

// ListParams filters and orders a dataset listing.
type ListParams struct {
	Category string
	Order    ListingOrder
}

// ListingService serves category pages. Datasets are fetched on every call.
type ListingService struct {
	catalog *catalog.Catalog
	rng     shuffle.Source
	logger  *slog.Logger
}

// NewListingService creates a listing service. A nil rng uses the shared
// process source.
func NewListingService(cat *catalog.Catalog, rng shuffle.Source, logger *slog.Logger) *ListingService {
	if rng == nil {
		rng = shuffle.System
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingService{catalog: cat, rng: rng, logger: logger}
}

// Datasets returns the manifest in declaration order.
func (s *ListingService) Datasets() []catalog.Dataset {
	return s.catalog.Manifest().Datasets
}

// List returns the listings of dataset, filtered by category and ordered.
func (s *ListingService) List(ctx context.Context, dataset string, params ListParams) ([]domain.Listing, error) {
	order := params.Order
	if order == "" {
		order = OrderFeatured
	}
	if order != OrderFeatured && order != OrderSource {
		return nil, domainerrors.ValidationWithDetails("invalid order",
			map[string]string{"order": "must be one of: featured source"})
	}

	listings, err := s.catalog.Load(ctx, dataset)
	if err != nil {
		return nil, err
	}

	if params.Category != "" {
		listings = shuffle.FilterCategory(listings, func(l domain.Listing) string { return l.Category }, params.Category)
	}

	if order == OrderFeatured {
		listings = shuffle.PremiumFirst(listings, domain.Listing.IsPremium, s.rng)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	s.logger.Debug("listing page",
		"dataset", dataset,
		"category", params.Category,
		"order", order,
		"count", len(listings),
	)
	return listings, nil
}

// Get returns one listing of dataset.
func (s *ListingService) Get(ctx context.Context, dataset, listingID string) (domain.Listing, error) {
	listings, err := s.catalog.Load(ctx, dataset)
	if err != nil {
		return domain.Listing{}, err
	}
	for _, l := range listings {
		if l.ID == listingID {
			return l, nil
		}
	}
	s.logger.Debug("listing not found", "dataset", dataset, "listing_id", listingID)
	return domain.Listing{}, domainerrors.NotFoundf("listing %q not found in %s", listingID, dataset)
}
