// Package catalog loads the static JSON listing datasets the guide is built
// from. Every Load goes to the source; nothing is cached here.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/visitgevgelija/guide-server/internal/domain"
	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
)

// FetchObserver is told about every dataset load. *metrics.Metrics satisfies it.
type FetchObserver interface {
	ObserveFetch(dataset string, err error, took time.Duration)
}

// Problem is a record that was skipped while decoding a dataset.
type Problem struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Report is the detailed outcome of decoding one dataset.
type Report struct {
	Dataset  Dataset
	Listings []domain.Listing
	Problems []Problem
}

// Catalog resolves dataset names to listings.
type Catalog struct {
	manifest *Manifest
	source   Source
	observer FetchObserver
	logger   *slog.Logger
}

// New creates a catalog. observer may be nil.
func New(manifest *Manifest, source Source, observer FetchObserver, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{manifest: manifest, source: source, observer: observer, logger: logger}
}

// Manifest returns the dataset manifest.
func (c *Catalog) Manifest() *Manifest { return c.manifest }

// Source returns the underlying source.
func (c *Catalog) Source() Source { return c.source }

// Dataset looks up a dataset by name, returning a NOT_FOUND error when unknown.
func (c *Catalog) Dataset(name string) (Dataset, error) {
	ds, ok := c.manifest.Lookup(name)
	if !ok {
		return Dataset{}, domainerrors.NotFoundf("unknown dataset %q", name)
	}
	return ds, nil
}

// Load fetches and decodes the named dataset. Skipped records are logged.
func (c *Catalog) Load(ctx context.Context, name string) ([]domain.Listing, error) {
	report, err := c.Inspect(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, p := range report.Problems {
		c.logger.Warn("skipped dataset record",
			"dataset", name, "index", p.Index, "id", p.ID, "reason", p.Reason)
	}
	return report.Listings, nil
}

// Inspect is Load with the decode problems returned instead of logged.
func (c *Catalog) Inspect(ctx context.Context, name string) (*Report, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	listings, problems, err := c.fetch(ctx, ds)
	if c.observer != nil {
		c.observer.ObserveFetch(ds.Name, err, time.Since(start))
	}
	if err != nil {
		return nil, domainerrors.FetchFailed(err, ds.Name)
	}

	return &Report{Dataset: ds, Listings: listings, Problems: problems}, nil
}

// LoadAll loads the given datasets in parallel. It fails as a whole if any
// dataset fails; the returned map is keyed by dataset name.
func (c *Catalog) LoadAll(ctx context.Context, datasets []Dataset) (map[string][]domain.Listing, error) {
	var mu sync.Mutex
	out := make(map[string][]domain.Listing, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	for _, ds := range datasets {
		g.Go(func() error {
			listings, err := c.Load(gctx, ds.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[ds.Name] = listings
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Catalog) fetch(ctx context.Context, ds Dataset) ([]domain.Listing, []Problem, error) {
	data, err := c.source.Fetch(ctx, ds.File)
	if err != nil {
		return nil, nil, err
	}
	return Decode(ds, data)
}

// Decode parses a dataset file. The file must be a JSON array; records that
// cannot be used (no id, duplicate id, not an object) become Problems. A
// record without a category inherits the dataset's.
func Decode(ds Dataset, data []byte) ([]domain.Listing, []Problem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%s is not a JSON array: %w", ds.File, err)
	}

	listings := make([]domain.Listing, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	var problems []Problem

	for i, rec := range raw {
		var l domain.Listing
		if err := json.Unmarshal(rec, &l); err != nil {
			problems = append(problems, Problem{Index: i, Reason: err.Error()})
			continue
		}
		if seen[l.ID] {
			problems = append(problems, Problem{Index: i, ID: l.ID, Reason: "duplicate id in dataset"})
			continue
		}
		seen[l.ID] = true
		if l.Category == "" {
			l.Category = ds.Category
		}
		listings = append(listings, l)
	}

	return listings, problems, nil
}

// Collisions loads every dataset with pages or search entries and reports
// the ids they share.
func (c *Catalog) Collisions(ctx context.Context) ([]Collision, error) {
	byDataset, err := c.LoadAll(ctx, c.manifest.filter(func(ds Dataset) bool {
		return ds.Route != ""
	}))
	if err != nil {
		return nil, err
	}
	return FindCollisions(byDataset), nil
}

// Collision is a listing id shared by more than one dataset.
type Collision struct {
	ID       string   `json:"id"`
	Datasets []string `json:"datasets"`
}

// FindCollisions reports ids present in more than one of the given datasets,
// ordered by id. byDataset maps dataset name to its listings.
func FindCollisions(byDataset map[string][]domain.Listing) []Collision {
	owners := make(map[string][]string)
	for name, listings := range byDataset {
		for _, l := range listings {
			owners[l.ID] = append(owners[l.ID], name)
		}
	}

	var out []Collision
	for id, names := range owners {
		if len(names) < 2 {
			continue
		}
		slices.Sort(names)
		out = append(out, Collision{ID: id, Datasets: names})
	}
	slices.SortFunc(out, func(a, b Collision) int { return strings.Compare(a.ID, b.ID) })
	return out
}
