package api

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/domain"
	"github.com/visitgevgelija/guide-server/internal/homepage"
	"github.com/visitgevgelija/guide-server/internal/http/response"
	"github.com/visitgevgelija/guide-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listDatasets",
		Method:      http.MethodGet,
		Path:        "/api/v1/datasets",
		Summary:     "List datasets",
		Description: "Returns the dataset manifest in declaration order",
		Tags:        []string{"Catalog"},
	}, s.handleListDatasets)

	huma.Register(s.api, huma.Operation{
		OperationID: "listListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/datasets/{dataset}/listings",
		Summary:     "List listings",
		Description: "Returns a category page: premium listings first in a fresh random order, or file order",
		Tags:        []string{"Catalog"},
	}, s.handleListListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListing",
		Method:      http.MethodGet,
		Path:        "/api/v1/datasets/{dataset}/listings/{id}",
		Summary:     "Get listing",
		Description: "Returns one listing of a dataset",
		Tags:        []string{"Catalog"},
	}, s.handleGetListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHomepage",
		Method:      http.MethodGet,
		Path:        "/api/v1/homepage",
		Summary:     "Get homepage",
		Description: "Returns all eight homepage sections, captured together and cached until the data changes",
		Tags:        []string{"Catalog"},
	}, s.handleGetHomepage)
}

// === DTOs ===

// DatasetsOutput contains the manifest.
type DatasetsOutput struct {
	Body []catalog.Dataset
}

// ListListingsInput contains parameters for a category page.
type ListListingsInput struct {
	Dataset  string `path:"dataset" doc:"Dataset name"`
	Category string `query:"category" doc:"Keep only this category (case-insensitive)"`
	Order    string `query:"order" enum:"featured,source" default:"featured" doc:"featured shuffles premium first; source keeps file order"`
}

// ListingsResponse is a page of listings.
type ListingsResponse struct {
	Dataset  string           `json:"dataset"`
	Count    int              `json:"count"`
	Listings []domain.Listing `json:"listings"`
}

// ListingsOutput wraps the listings response for Huma.
type ListingsOutput struct {
	Body ListingsResponse
}

// GetListingInput identifies one listing.
type GetListingInput struct {
	Dataset string `path:"dataset" doc:"Dataset name"`
	ID      string `path:"id" doc:"Listing ID"`
}

// ListingOutput contains one listing.
type ListingOutput struct {
	Body domain.Listing
}

// HomepageOutput contains the homepage snapshot.
type HomepageOutput struct {
	Body *homepage.Snapshot
}

// === Handlers ===

func (s *Server) handleListDatasets(_ context.Context, _ *struct{}) (*DatasetsOutput, error) {
	return &DatasetsOutput{Body: s.services.Catalog.Datasets()}, nil
}

func (s *Server) handleListListings(ctx context.Context, input *ListListingsInput) (*ListingsOutput, error) {
	listings, err := s.services.Listing.List(ctx, input.Dataset, service.ListParams{
		Category: input.Category,
		Order:    service.ListingOrder(input.Order),
	})
	if err != nil {
		return nil, err
	}
	return &ListingsOutput{Body: ListingsResponse{
		Dataset:  input.Dataset,
		Count:    len(listings),
		Listings: listings,
	}}, nil
}

func (s *Server) handleGetListing(ctx context.Context, input *GetListingInput) (*ListingOutput, error) {
	listing, err := s.services.Listing.Get(ctx, input.Dataset, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListingOutput{Body: listing}, nil
}

func (s *Server) handleGetHomepage(ctx context.Context, _ *struct{}) (*HomepageOutput, error) {
	snap, err := s.services.Homepage.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &HomepageOutput{Body: snap}, nil
}

// handleDataFile serves a raw dataset file, as the static site would. Only
// files named in the manifest are served.
func (s *Server) handleDataFile(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if _, ok := s.manifest.ByFile(file); !ok {
		response.NotFound(w, "unknown data file", s.logger)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(s.opts.DataDir, file))
}
