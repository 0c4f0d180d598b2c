// Package homepage holds the in-memory snapshot of the eight datasets shown
// on the landing page.
package homepage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/visitgevgelija/guide-server/internal/catalog"
	"github.com/visitgevgelija/guide-server/internal/domain"
)

// Snapshot is one complete capture of the homepage datasets. Every field is
// filled; there is no partial snapshot.
type Snapshot struct {
	Accommodation []domain.Listing `json:"accommodation"`
	Restaurants   []domain.Listing `json:"restaurants"`
	Entertainment []domain.Listing `json:"entertainment"`
	Attractions   []domain.Listing `json:"attractions"`
	Wineries      []domain.Listing `json:"wineries"`
	Offers        []domain.Listing `json:"offers"`
	Stories       []domain.Listing `json:"stories"`
	Banners       []domain.Listing `json:"banners"`
	CapturedAt    time.Time        `json:"capturedAt"`
}

// sections maps dataset names to snapshot fields.
var sections = []struct {
	dataset string
	field   func(*Snapshot) *[]domain.Listing
}{
	{"accommodation", func(s *Snapshot) *[]domain.Listing { return &s.Accommodation }},
	{"restaurants", func(s *Snapshot) *[]domain.Listing { return &s.Restaurants }},
	{"zabava", func(s *Snapshot) *[]domain.Listing { return &s.Entertainment }},
	{"atrakcii", func(s *Snapshot) *[]domain.Listing { return &s.Attractions }},
	{"vinski-raj", func(s *Snapshot) *[]domain.Listing { return &s.Wineries }},
	{"ponudi", func(s *Snapshot) *[]domain.Listing { return &s.Offers }},
	{"prikazni", func(s *Snapshot) *[]domain.Listing { return &s.Stories }},
	{"banners", func(s *Snapshot) *[]domain.Listing { return &s.Banners }},
}

// Datasets returns the dataset names a snapshot is built from.
func Datasets() []string {
	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = sec.dataset
	}
	return names
}

// NewSnapshot assembles a snapshot from loaded datasets. It fails if any of
// the eight is missing.
func NewSnapshot(byDataset map[string][]domain.Listing, at time.Time) (*Snapshot, error) {
	snap := &Snapshot{CapturedAt: at}
	for _, sec := range sections {
		listings, ok := byDataset[sec.dataset]
		if !ok {
			return nil, fmt.Errorf("homepage dataset %q missing", sec.dataset)
		}
		if listings == nil {
			listings = []domain.Listing{}
		}
		*sec.field(snap) = listings
	}
	return snap, nil
}

// Cache holds at most one snapshot. Every Clear starts a new generation; a
// snapshot loaded in an older generation is never stored.
type Cache struct {
	current atomic.Pointer[Snapshot]

	mu  sync.Mutex
	gen uint64
}

// Set replaces the cached snapshot.
func (c *Cache) Set(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Store(s)
}

// Generation returns the current generation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfGeneration stores s only if no Clear happened since gen was read.
func (c *Cache) SetIfGeneration(gen uint64, s *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.current.Store(s)
	return true
}

// Get returns the cached snapshot, if any.
func (c *Cache) Get() (*Snapshot, bool) {
	s := c.current.Load()
	return s, s != nil
}

// Clear drops the cached snapshot.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.current.Store(nil)
}

// Recorder counts cache hits. *metrics.Metrics satisfies it.
type Recorder interface {
	CountHomepage(hit bool)
}

// Service serves the homepage snapshot, loading it on first use.
type Service struct {
	catalog  *catalog.Catalog
	cache    *Cache
	recorder Recorder
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	loading singleflight.Group
}

// NewService creates a homepage service. timeout bounds a shared load;
// zero means no bound. recorder may be nil.
func NewService(cat *catalog.Catalog, cache *Cache, recorder Recorder, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = &Cache{}
	}
	return &Service{
		catalog:  cat,
		cache:    cache,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Cache returns the underlying cache.
func (s *Service) Cache() *Cache { return s.cache }

// Snapshot returns the cached snapshot or loads a fresh one. Concurrent
// callers share one load, which outlives a caller that gives up. Nothing is
// cached when any dataset fails.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cache.Get(); ok {
		s.count(true)
		return snap, nil
	}
	s.count(false)

	gen := s.cache.Generation()
	ch := s.loading.DoChan("homepage:"+strconv.FormatUint(gen, 10), func() (any, error) {
		if snap, ok := s.cache.Get(); ok {
			return snap, nil
		}
		return s.load(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *Service) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	datasets := make([]catalog.Dataset, 0, len(sections))
	for _, name := range Datasets() {
		ds, err := s.catalog.Dataset(name)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	start := time.Now()
	byDataset, err := s.catalog.LoadAll(ctx, datasets)
	if err != nil {
		s.logger.Warn("homepage load failed", "error", err)
		return nil, err
	}

	snap, err := NewSnapshot(byDataset, s.now())
	if err != nil {
		return nil, err
	}
	if !s.cache.SetIfGeneration(gen, snap) {
		s.logger.Info("homepage data changed during load, snapshot not cached", "took", time.Since(start))
		return snap, nil
	}
	s.logger.Info("homepage snapshot cached", "took", time.Since(start))
	return snap, nil
}

func (s *Service) count(hit bool) {
	if s.recorder != nil {
		s.recorder.CountHomepage(hit)
	}
}
