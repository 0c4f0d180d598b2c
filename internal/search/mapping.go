package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/visitgevgelija/guide-server/internal/i18n"
)

// buildIndexMapping creates the mapping for search entries.
//
// Every language gets its own title and description field. English text is
// stemmed; Macedonian, Serbian and Greek go through the standard analyzer,
// which lowercases Cyrillic and Greek correctly but does not stem.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	for _, lang := range i18n.Languages {
		analyzer := standard.Name
		if lang == i18n.English {
			analyzer = en.AnalyzerName
		}

		titleFieldMapping := bleve.NewTextFieldMapping()
		titleFieldMapping.Analyzer = analyzer
		titleFieldMapping.Store = false
		titleFieldMapping.IncludeTermVectors = true
		docMapping.AddFieldMappingsAt(titleField(lang), titleFieldMapping)

		descFieldMapping := bleve.NewTextFieldMapping()
		descFieldMapping.Analyzer = analyzer
		descFieldMapping.Store = false
		docMapping.AddFieldMappingsAt(descriptionField(lang), descFieldMapping)
	}

	// Keyword fields: exact match for filters, stored to map hits back.
	for _, name := range []string{"listing_id", "dataset", "category"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(name, fm)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
