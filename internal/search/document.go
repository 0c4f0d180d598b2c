// Package search aggregates the searchable datasets into one in-memory list.
// Filter answers the overlay's substring queries; FullText ranks the same
// entries through an in-memory Bleve index.
package search

import (
	"net/url"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/domain"
	"github.com/visitgevgelija/guide-server/internal/i18n"
)

// Entry is the search projection of one listing.
type Entry struct {
	ID          string
	Title       domain.LocalizedText
	Description domain.LocalizedText
	Image       string
	Category    string
	Dataset     string
	Route       string
	IsStory     bool
}

// NewEntry projects a listing of ds.
func NewEntry(ds catalog.Dataset, l domain.Listing) Entry {
	return Entry{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image(),
		Category:    l.Category,
		Dataset:     ds.Name,
		Route:       ds.Route,
		IsStory:     ds.Story,
	}
}

// DocID is the entry's key in the full-text index. Listing ids are only
// unique within a dataset.
func (e Entry) DocID() string {
	return e.Dataset + "/" + e.ID
}

// Link returns the client route that opens the entry. Stories have their
// own page; everything else opens a modal on the category page.
func Link(e Entry, lang i18n.Language) string {
	if e.IsStory {
		return "/" + string(lang) + "/" + e.Route + "/" + url.PathEscape(e.ID)
	}
	return "/" + string(lang) + "/" + e.Route + "?open=" + url.QueryEscape(e.ID)
}

// Result is an entry rendered for one language.
type Result struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Image         string `json:"image,omitempty"`
	Category      string `json:"category"`
	CategoryLabel string `json:"categoryLabel"`
	Dataset       string `json:"dataset"`
	Path          string `json:"path"`
	IsStory       bool   `json:"isStory"`
}

func newResult(e Entry, lang i18n.Language, labels i18n.Labels) Result {
	return Result{
		ID:            e.ID,
		Title:         e.Title.Or(lang),
		Description:   e.Description.Get(lang),
		Image:         e.Image,
		Category:      e.Category,
		CategoryLabel: labels.Label(e.Category, lang),
		Dataset:       e.Dataset,
		Path:          Link(e, lang),
		IsStory:       e.IsStory,
	}
}

// toMap flattens an entry into the field names of the index mapping.
func (e Entry) toMap() map[string]any {
	m := map[string]any{
		"listing_id": e.ID,
		"dataset":    e.Dataset,
		"category":   e.Category,
	}
	for _, lang := range i18n.Languages {
		if v := e.Title.Get(lang); v != "" {
			m[titleField(lang)] = v
		}
		if v := searchableText(e.Description.Get(lang)); v != "" {
			m[descriptionField(lang)] = v
		}
	}
	return m
}

func titleField(lang i18n.Language) string       { return "title_" + string(lang) }
func descriptionField(lang i18n.Language) string { return "description_" + string(lang) }
