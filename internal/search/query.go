package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/visitgevgelija/guide-server/internal/i18n"
)

// Full-text result limits.
const (
	DefaultFullTextLimit = 20
	MaxFullTextLimit     = 100
)

// FullTextParams configures a ranked query.
type FullTextParams struct {
	Query    string
	Lang     i18n.Language
	Datasets []string // empty = all
	Limit    int
	Offset   int
}

// FullTextResult is a page of ranked hits.
type FullTextResult struct {
	Query  string        `json:"query"`
	Total  uint64        `json:"total"`
	TookMs int64         `json:"tookMs"`
	Hits   []FullTextHit `json:"hits"`
}

// FullTextHit is a result with its relevance score.
type FullTextHit struct {
	Result
	Score float64 `json:"score"`
}

// Search runs a ranked query. Hits are rendered in params.Lang.
func (f *FullTextIndex) Search(ctx context.Context, params FullTextParams, labels i18n.Labels) (*FullTextResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultFullTextLimit
	}
	params.Limit = min(params.Limit, MaxFullTextLimit)
	if !params.Lang.Valid() {
		params.Lang = i18n.DefaultLanguage
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildFullTextQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "_id"})
	req.Fields = []string{"listing_id", "dataset"}

	res, err := f.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &FullTextResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]FullTextHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		e, ok := f.entry(hit.ID)
		if !ok {
			continue
		}
		out.Hits = append(out.Hits, FullTextHit{
			Result: newResult(e, params.Lang, labels),
			Score:  hit.Score,
		})
	}
	return out, nil
}

// buildFullTextQuery matches the requested language's title hardest, then
// other languages' titles and the descriptions. Fuzzy and prefix clauses
// on the requested title catch typos and partial words.
func buildFullTextQuery(params FullTextParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		var text []query.Query

		for _, lang := range i18n.Languages {
			titleMatch := bleve.NewMatchQuery(q)
			titleMatch.SetField(titleField(lang))
			if lang == params.Lang {
				titleMatch.SetBoost(3.0)
			}
			text = append(text, titleMatch)

			descMatch := bleve.NewMatchQuery(q)
			descMatch.SetField(descriptionField(lang))
			if lang == params.Lang {
				descMatch.SetBoost(1.5)
			} else {
				descMatch.SetBoost(0.5)
			}
			text = append(text, descMatch)
		}

		lower := strings.ToLower(q)

		fuzzy := bleve.NewFuzzyQuery(lower)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField(titleField(params.Lang))
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if utf8.RuneCountInString(lower) >= 2 {
			prefix := bleve.NewPrefixQuery(lower)
			prefix.SetField(titleField(params.Lang))
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Datasets) > 0 {
		sets := make([]query.Query, len(params.Datasets))
		for i, name := range params.Datasets {
			tq := bleve.NewTermQuery(name)
			tq.SetField("dataset")
			sets[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(sets...))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchNoneQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
