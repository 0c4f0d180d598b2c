package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// FullTextIndex is an in-memory Bleve index over search entries. It is
// rebuilt from scratch each time the aggregator loads.
//
// All methods are safe for concurrent use.
type FullTextIndex struct {
	mu      sync.RWMutex
	index   bleve.Index
	entries map[string]Entry // by DocID
}

// NewFullTextIndex builds an index over entries.
func NewFullTextIndex(entries []Entry) (*FullTextIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	f := &FullTextIndex{
		index:   index,
		entries: make(map[string]Entry, len(entries)),
	}
	if err := f.indexEntries(entries); err != nil {
		_ = index.Close()
		return nil, err
	}
	return f, nil
}

// indexEntries adds entries in batches of 500.
func (f *FullTextIndex) indexEntries(entries []Entry) error {
	const batchSize = 500

	for i := 0; i < len(entries); i += batchSize {
		end := min(i+batchSize, len(entries))

		batch := f.index.NewBatch()
		for _, e := range entries[i:end] {
			if err := batch.Index(e.DocID(), e.toMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", e.DocID(), err)
			}
			f.entries[e.DocID()] = e
		}
		if err := f.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed entries.
func (f *FullTextIndex) DocumentCount() (uint64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.index.DocCount()
}

// Close releases the index.
func (f *FullTextIndex) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index.Close()
}

func (f *FullTextIndex) entry(docID string) (Entry, bool) {
	e, ok := f.entries[docID]
	return e, ok
}
