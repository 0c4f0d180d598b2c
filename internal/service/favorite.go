package service

import (
	"context"
	"log/slog"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/domain"
	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/favorites"
	"github.com/visitgevgelija/guide-server/internal/i18n"
	"github.com/visitgevgelija/guide-server/internal/id"
	"github.com/visitgevgelija/guide-server/internal/search"
	"github.com/visitgevgelija/guide-server/internal/validation"
)

// FavoriteMatch is one listing a favorite id resolves to.
type FavoriteMatch struct {
	Dataset string         `json:"dataset"`
	Path    string         `json:"path"`
	Listing domain.Listing `json:"listing"`
}

// ExpandedFavorite is a favorite id with the listings it names. Favorites
// are a flat id set, so an id shared by several datasets is ambiguous and
// every match is returned.
type ExpandedFavorite struct {
	ID        string          `json:"id"`
	Ambiguous bool            `json:"ambiguous"`
	Matches   []FavoriteMatch `json:"matches"`
}

// FavoriteService validates favorites requests and resolves ids to listings.
type FavoriteService struct {
	favorites *favorites.Service
	catalog   *catalog.Catalog
	validator *validation.Validator
	logger    *slog.Logger
}

// NewFavoriteService creates a favorites service.
func NewFavoriteService(favs *favorites.Service, cat *catalog.Catalog, v *validation.Validator, logger *slog.Logger) *FavoriteService {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoriteService{favorites: favs, catalog: cat, validator: v, logger: logger}
}

// List returns the device's favorite ids in insertion order.
func (s *FavoriteService) List(ctx context.Context, deviceID string) (favorites.View, error) {
	device, err := parseDevice(deviceID)
	if err != nil {
		return favorites.View{}, err
	}
	return s.favorites.List(ctx, device), nil
}

// Add marks listingID as a favorite. A change that could not be persisted
// is still a success; the mutation reports Persisted=false.
func (s *FavoriteService) Add(ctx context.Context, deviceID, listingID string) (favorites.Mutation, error) {
	device, err := s.checkMutation(deviceID, listingID)
	if err != nil {
		return favorites.Mutation{}, err
	}
	m, err := s.favorites.Add(ctx, device, listingID)
	return m, degraded(err)
}

// Remove unmarks listingID. Errors follow Add.
func (s *FavoriteService) Remove(ctx context.Context, deviceID, listingID string) (favorites.Mutation, error) {
	device, err := s.checkMutation(deviceID, listingID)
	if err != nil {
		return favorites.Mutation{}, err
	}
	m, err := s.favorites.Remove(ctx, device, listingID)
	return m, degraded(err)
}

// Expand resolves every favorite of the device against the routed datasets.
// Ids no longer present in any dataset come back with no matches.
func (s *FavoriteService) Expand(ctx context.Context, deviceID string, lang i18n.Language) ([]ExpandedFavorite, error) {
	view, err := s.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	out := make([]ExpandedFavorite, 0, len(view.IDs))
	if len(view.IDs) == 0 {
		return out, nil
	}

	var routed []catalog.Dataset
	for _, ds := range s.catalog.Manifest().Datasets {
		if ds.Route != "" {
			routed = append(routed, ds)
		}
	}
	byDataset, err := s.catalog.LoadAll(ctx, routed)
	if err != nil {
		return nil, err
	}

	matches := make(map[string][]FavoriteMatch, len(view.IDs))
	for _, fav := range view.IDs {
		matches[fav] = nil
	}
	for _, ds := range routed {
		for _, l := range byDataset[ds.Name] {
			if _, ok := matches[l.ID]; !ok {
				continue
			}
			matches[l.ID] = append(matches[l.ID], FavoriteMatch{
				Dataset: ds.Name,
				Path:    search.Link(search.NewEntry(ds, l), lang),
				Listing: l,
			})
		}
	}

	for _, fav := range view.IDs {
		found := matches[fav]
		if found == nil {
			found = []FavoriteMatch{}
		}
		if len(found) > 1 {
			s.logger.Warn("favorite id matches several datasets", "id", fav, "matches", len(found))
		}
		out = append(out, ExpandedFavorite{ID: fav, Ambiguous: len(found) > 1, Matches: found})
	}
	return out, nil
}

func (s *FavoriteService) checkMutation(deviceID, listingID string) (string, error) {
	device, err := parseDevice(deviceID)
	if err != nil {
		return "", err
	}
	if err := s.validator.Var("id", listingID, "listingid"); err != nil {
		return "", err
	}
	return device, nil
}

// parseDevice canonicalizes a device id or returns a VALIDATION error.
func parseDevice(raw string) (string, error) {
	if raw == "" {
		return "", domainerrors.ValidationWithDetails("device id required",
			map[string]string{"device": "is required"})
	}
	device, err := id.ParseDeviceID(raw)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid device id").
			WithDetails(map[string]string{"device": "must be a valid UUID"})
	}
	return device, nil
}

// degraded drops the storage error of an applied change; the favorites
// service has already logged and counted it.
func degraded(err error) error {
	if domainerrors.Is(err, favorites.ErrPersist) {
		return nil
	}
	return err
}
