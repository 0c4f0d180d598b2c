package service

import (
	"context"
	"strings"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/i18n"
	"github.com/visitgevgelija/guide-server/internal/search"
)

// SearchService answers the search overlay and the ranked search endpoint.
type SearchService struct {
	aggregator *search.Aggregator
	manifest   *catalog.Manifest
}

// NewSearchService creates a search service.
func NewSearchService(aggregator *search.Aggregator, manifest *catalog.Manifest) *SearchService {
	return &SearchService{aggregator: aggregator, manifest: manifest}
}

// Aggregator returns the underlying aggregator.
func (s *SearchService) Aggregator() *search.Aggregator { return s.aggregator }

// Search returns at most search.MaxResults substring matches in source order.
func (s *SearchService) Search(ctx context.Context, query, lang string) ([]search.Result, error) {
	l, err := parseLanguage(lang)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Search(ctx, query, l)
}

// FullTextRequest is a ranked query as received from a client.
type FullTextRequest struct {
	Query    string
	Lang     string
	Datasets []string
	Limit    int
	Offset   int
}

// FullText runs a relevance-ranked query across all languages.
func (s *SearchService) FullText(ctx context.Context, req FullTextRequest) (*search.FullTextResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domainerrors.ValidationWithDetails("query required", map[string]string{"q": "is required"})
	}
	l, err := parseLanguage(req.Lang)
	if err != nil {
		return nil, err
	}
	for _, name := range req.Datasets {
		if ds, ok := s.manifest.Lookup(name); !ok || !ds.Search {
			return nil, domainerrors.ValidationWithDetails("unknown dataset",
				map[string]string{"datasets": name + " is not searchable"})
		}
	}
	if req.Offset < 0 {
		return nil, domainerrors.ValidationWithDetails("invalid offset", map[string]string{"offset": "must not be negative"})
	}

	return s.aggregator.FullText(ctx, search.FullTextParams{
		Query:    query,
		Lang:     l,
		Datasets: req.Datasets,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}

// Status reports the aggregator state and how many entries it holds.
func (s *SearchService) Status() (search.State, int) {
	return s.aggregator.State(), s.aggregator.Len()
}

// parseLanguage accepts an empty value as the default language.
func parseLanguage(raw string) (i18n.Language, error) {
	if strings.TrimSpace(raw) == "" {
		return i18n.DefaultLanguage, nil
	}
	l, ok := i18n.ParseLanguage(raw)
	if !ok {
		return "", domainerrors.ValidationWithDetails("unsupported language",
			map[string]string{"lang": "must be one of: mk en sr el"})
	}
	return l, nil
}
