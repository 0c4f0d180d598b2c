package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/visitgevgelija/guide-server/internal/favorites"
	"github.com/visitgevgelija/guide-server/internal/i18n"
	"github.com/visitgevgelija/guide-server/internal/service"
)

func (s *Server) registerFavoriteRoutes() {
	limit := huma.Middlewares{s.rateLimited(s.mutationLimiter)}

	huma.Register(s.api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List favorites",
		Description: "Returns the device's favorite ids in the order they were added; expand=true resolves them to listings",
		Tags:        []string{"Favorites"},
	}, s.handleListFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/favorites/{id}",
		Summary:     "Add favorite",
		Description: "Marks a listing as favorite. Idempotent.",
		Tags:        []string{"Favorites"},
		Middlewares: limit,
	}, s.handleAddFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      http.MethodDelete,
		Path:        "/api/v1/favorites/{id}",
		Summary:     "Remove favorite",
		Description: "Unmarks a listing. Removing an absent id is a no-op.",
		Tags:        []string{"Favorites"},
		Middlewares: limit,
	}, s.handleRemoveFavorite)
}

// === DTOs ===

// ListFavoritesInput contains parameters for listing favorites.
type ListFavoritesInput struct {
	DeviceID string `header:"X-Device-ID" doc:"Device id from POST /api/v1/devices"`
	Expand   bool   `query:"expand" doc:"Resolve ids to listings"`
	Lang     string `query:"lang" doc:"Language for listing paths when expanding"`
}

// FavoritesResponse is the device's favorites.
type FavoritesResponse struct {
	IDs   []string                   `json:"ids"`
	Count int                        `json:"count"`
	Items []service.ExpandedFavorite `json:"items,omitempty" doc:"Present when expand=true"`
}

// FavoritesOutput wraps the favorites response for Huma.
type FavoritesOutput struct {
	Body FavoritesResponse
}

// FavoriteInput identifies a favorite of a device.
type FavoriteInput struct {
	DeviceID string `header:"X-Device-ID" doc:"Device id from POST /api/v1/devices"`
	ID       string `path:"id" doc:"Listing ID"`
}

// MutationOutput reports a favorites change. persisted=false means the
// change is kept for this server process only.
type MutationOutput struct {
	Body favorites.Mutation
}

// === Handlers ===

func (s *Server) handleListFavorites(ctx context.Context, input *ListFavoritesInput) (*FavoritesOutput, error) {
	view, err := s.services.Favorite.List(ctx, input.DeviceID)
	if err != nil {
		return nil, err
	}
	out := &FavoritesOutput{Body: FavoritesResponse{IDs: view.IDs, Count: view.Count}}
	if out.Body.IDs == nil {
		out.Body.IDs = []string{}
	}

	if input.Expand {
		items, err := s.services.Favorite.Expand(ctx, input.DeviceID, i18n.LanguageOrDefault(input.Lang))
		if err != nil {
			return nil, err
		}
		out.Body.Items = items
	}
	return out, nil
}

func (s *Server) handleAddFavorite(ctx context.Context, input *FavoriteInput) (*MutationOutput, error) {
	m, err := s.services.Favorite.Add(ctx, input.DeviceID, input.ID)
	if err != nil {
		return nil, err
	}
	return &MutationOutput{Body: m}, nil
}

func (s *Server) handleRemoveFavorite(ctx context.Context, input *FavoriteInput) (*MutationOutput, error) {
	m, err := s.services.Favorite.Remove(ctx, input.DeviceID, input.ID)
	if err != nil {
		return nil, err
	}
	return &MutationOutput{Body: m}, nil
}
