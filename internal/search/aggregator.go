package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/i18n"
)

// MaxResults caps Filter.
const MaxResults = 10

// State is the aggregator's load state.
type State int

// Load states.
const (
	Unloaded State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Recorder observes searches and index builds. *metrics.Metrics satisfies it.
type Recorder interface {
	CountSearch(kind string, results int)
	ObserveIndexBuild(err error, took time.Duration)
}

// Options configures an Aggregator.
type Options struct {
	Labels   i18n.Labels
	Recorder Recorder
	// Timeout bounds one shared load; zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// haystack holds the folded strings an entry is matched against in one
// language: title, description and category label.
type haystack [3]string

// Aggregator loads the searchable datasets once and answers queries from
// memory until Reset.
type Aggregator struct {
	catalog  *catalog.Catalog
	labels   i18n.Labels
	recorder Recorder
	timeout  time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	state    State
	gen      uint64
	entries  []Entry
	folded   map[i18n.Language][]haystack
	fullText *FullTextIndex
	lastErr  error

	loading singleflight.Group
}

// NewAggregator creates an unloaded aggregator.
func NewAggregator(cat *catalog.Catalog, opts Options) *Aggregator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Labels == nil {
		opts.Labels = i18n.DefaultLabels()
	}
	return &Aggregator{
		catalog:  cat,
		labels:   opts.Labels,
		recorder: opts.Recorder,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}
}

// State returns the current load state.
func (a *Aggregator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Len returns the number of loaded entries.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Ensure loads the entries unless they are already loaded. A failed load is
// retried by the next call. Concurrent callers share one load; a caller that
// gives up does not cancel it for the others.
func (a *Aggregator) Ensure(ctx context.Context) error {
	a.mu.Lock()
	if a.state == Ready {
		a.mu.Unlock()
		return nil
	}
	a.state = Loading
	gen := a.gen
	a.mu.Unlock()

	ch := a.loading.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return nil, a.load(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (a *Aggregator) load(ctx context.Context, gen uint64) error {
	a.mu.RLock()
	ready := a.state == Ready && a.gen == gen
	a.mu.RUnlock()
	if ready {
		return nil
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	sources := a.catalog.Manifest().Searchable()
	byDataset, err := a.catalog.LoadAll(ctx, sources)
	if err != nil {
		a.finish(gen, nil, nil, err)
		return err
	}

	for _, c := range catalog.FindCollisions(byDataset) {
		a.logger.Warn("listing id shared across datasets", "id", c.ID, "datasets", c.Datasets)
	}

	var entries []Entry
	for _, ds := range sources {
		for _, l := range byDataset[ds.Name] {
			entries = append(entries, NewEntry(ds, l))
		}
	}

	start := time.Now()
	fullText, ftErr := NewFullTextIndex(entries)
	if a.recorder != nil {
		a.recorder.ObserveIndexBuild(ftErr, time.Since(start))
	}
	if ftErr != nil {
		a.logger.Error("full-text index build failed", "error", ftErr)
	}

	a.finish(gen, entries, fullText, nil)
	a.logger.Info("search entries loaded", "entries", len(entries), "sources", len(sources))
	return nil
}

// finish publishes a load's outcome unless a Reset happened meanwhile.
func (a *Aggregator) finish(gen uint64, entries []Entry, fullText *FullTextIndex, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.gen != gen {
		if fullText != nil {
			_ = fullText.Close()
		}
		return
	}
	if err != nil {
		a.state = Failed
		a.lastErr = err
		a.logger.Warn("search load failed", "error", err)
		return
	}

	a.state = Ready
	a.lastErr = nil
	a.entries = entries
	a.folded = foldEntries(entries, a.labels)
	a.fullText = fullText
}

// Reset discards loaded entries; the next Ensure loads again. An in-flight
// load finishing after Reset is dropped.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	a.state = Unloaded
	a.entries = nil
	a.folded = nil
	a.lastErr = nil
	if a.fullText != nil {
		_ = a.fullText.Close()
		a.fullText = nil
	}
}

// Filter returns up to MaxResults entries whose title, description or
// category label contains query, ignoring case, in source order. A blank
// query, or an aggregator that is not Ready, yields no results.
func (a *Aggregator) Filter(query string, lang i18n.Language) []Result {
	if !lang.Valid() {
		lang = i18n.DefaultLanguage
	}
	needle := fold(strings.TrimSpace(query))
	if needle == "" {
		return []Result{}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	results := make([]Result, 0, MaxResults)
	for i, hay := range a.folded[lang] {
		if !hay.contains(needle) {
			continue
		}
		results = append(results, newResult(a.entries[i], lang, a.labels))
		if len(results) == MaxResults {
			break
		}
	}
	return results
}

// Search loads the entries if needed and filters them.
func (a *Aggregator) Search(ctx context.Context, query string, lang i18n.Language) ([]Result, error) {
	if err := a.Ensure(ctx); err != nil {
		return nil, err
	}
	results := a.Filter(query, lang)
	if a.recorder != nil {
		a.recorder.CountSearch("substring", len(results))
	}
	return results, nil
}

// FullText loads the entries if needed and runs a ranked query.
func (a *Aggregator) FullText(ctx context.Context, params FullTextParams) (*FullTextResult, error) {
	if err := a.Ensure(ctx); err != nil {
		return nil, err
	}

	a.mu.RLock()
	index := a.fullText
	a.mu.RUnlock()
	if index == nil {
		return nil, domainerrors.Unavailable("full-text index unavailable")
	}

	res, err := index.Search(ctx, params, a.labels)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "full-text search failed")
	}
	if a.recorder != nil {
		a.recorder.CountSearch("fulltext", len(res.Hits))
	}
	return res, nil
}

// Err returns the error of the last failed load.
func (a *Aggregator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastErr == nil {
		return nil
	}
	return fmt.Errorf("last search load: %w", a.lastErr)
}

func foldEntries(entries []Entry, labels i18n.Labels) map[i18n.Language][]haystack {
	out := make(map[i18n.Language][]haystack, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		hays := make([]haystack, len(entries))
		for i, e := range entries {
			hays[i] = haystack{
				fold(e.Title.Get(lang)),
				fold(searchableText(e.Description.Get(lang))),
				fold(labels.Label(e.Category, lang)),
			}
		}
		out[lang] = hays
	}
	return out
}

func (h haystack) contains(needle string) bool {
	for _, s := range h {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// fold normalizes to NFC and applies full Unicode case folding. A Caser is
// stateful, so each call gets its own.
func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}
