package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/visitgevgelija/guide-server/internal/search"
	"github.com/visitgevgelija/guide-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search",
		Description: "Case-insensitive substring search over titles, descriptions and category labels. At most 10 results, in source order.",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchFullText",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/fulltext",
		Summary:     "Ranked search",
		Description: "Relevance-ranked search across all languages with typo tolerance",
		Tags:        []string{"Search"},
	}, s.handleFullTextSearch)
}

// === DTOs ===

// SearchInput contains substring search parameters.
type SearchInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search text; empty yields no results"`
	Lang  string `query:"lang" doc:"Language code (mk, en, sr, el); defaults to mk"`
}

// SearchResponse contains substring search results.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// FullTextInput contains ranked search parameters.
type FullTextInput struct {
	Query    string   `query:"q" required:"true" maxLength:"200" doc:"Search text"`
	Lang     string   `query:"lang" doc:"Language results are rendered in"`
	Datasets []string `query:"datasets" doc:"Restrict to these datasets (comma-separated)"`
	Limit    int      `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset   int      `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// FullTextOutput wraps the ranked search response for Huma.
type FullTextOutput struct {
	Body *search.FullTextResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	results, err := s.services.Search.Search(ctx, input.Query, input.Lang)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: SearchResponse{Query: input.Query, Results: results}}, nil
}

func (s *Server) handleFullTextSearch(ctx context.Context, input *FullTextInput) (*FullTextOutput, error) {
	res, err := s.services.Search.FullText(ctx, service.FullTextRequest{
		Query:    input.Query,
		Lang:     input.Lang,
		Datasets: input.Datasets,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &FullTextOutput{Body: res}, nil
}
