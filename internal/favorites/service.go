package favorites

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/visitgevgelija/guide-server/internal/store"
)

// EventChanged is published to a device after its set changes.
const EventChanged = "favorites.changed"

// Publisher delivers device-scoped events. *sse.Manager satisfies it.
type Publisher interface {
	Publish(deviceID, eventType string, data any)
}

// Recorder counts favorites activity. *metrics.Metrics satisfies it.
type Recorder interface {
	CountFavoriteChange(op string)
	CountPersistFailure(key string)
}

// ChangedEvent is the payload of EventChanged.
type ChangedEvent struct {
	ID    string   `json:"id"`
	Op    string   `json:"op"`
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// View is a read of one device's favorites.
type View struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// Service holds one Store per device, opened on first use.
type Service struct {
	kv        store.KV
	publisher Publisher
	recorder  Recorder
	logger    *slog.Logger

	mu      sync.RWMutex
	devices map[string]*Store
	opening singleflight.Group
}

// NewService creates a favorites service. publisher and recorder may be nil.
func NewService(kv store.KV, publisher Publisher, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		kv:        kv,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
		devices:   make(map[string]*Store),
	}
}

// For returns the store of deviceID, opening it on first use. A degraded
// open (corrupt or unreadable data) is logged and the empty store is kept,
// matching what the device would see after reload.
func (s *Service) For(ctx context.Context, deviceID string) *Store {
	s.mu.RLock()
	st, ok := s.devices[deviceID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	v, _, _ := s.opening.Do(deviceID, func() (any, error) {
		s.mu.RLock()
		existing, ok := s.devices[deviceID]
		s.mu.RUnlock()
		if ok {
			return existing, nil
		}

		opened, err := Open(context.WithoutCancel(ctx), s.kv, deviceID)
		if err != nil {
			s.logger.Warn("favorites degraded to empty set",
				"device_id", deviceID, "error", err, "corrupt", errors.Is(err, ErrCorrupt))
			s.countPersistFailure()
		}

		s.mu.Lock()
		s.devices[deviceID] = opened
		s.mu.Unlock()
		return opened, nil
	})
	return v.(*Store)
}

// List returns the device's favorites.
func (s *Service) List(ctx context.Context, deviceID string) View {
	st := s.For(ctx, deviceID)
	ids := st.IDs()
	return View{IDs: ids, Count: len(ids)}
}

// IsFavorite reports whether listingID is a favorite of deviceID.
func (s *Service) IsFavorite(ctx context.Context, deviceID, listingID string) bool {
	return s.For(ctx, deviceID).IsFavorite(listingID)
}

// Add marks listingID as a favorite of deviceID. A returned ErrPersist means
// the change was applied in memory only; the Mutation is still valid.
func (s *Service) Add(ctx context.Context, deviceID, listingID string) (Mutation, error) {
	st := s.For(ctx, deviceID)
	m, err := st.Add(ctx, listingID)
	s.afterMutation(deviceID, "add", st, m, err)
	return m, err
}

// Remove unmarks listingID for deviceID. Errors follow Add.
func (s *Service) Remove(ctx context.Context, deviceID, listingID string) (Mutation, error) {
	st := s.For(ctx, deviceID)
	m, err := st.Remove(ctx, listingID)
	s.afterMutation(deviceID, "remove", st, m, err)
	return m, err
}

func (s *Service) afterMutation(deviceID, op string, st *Store, m Mutation, err error) {
	if err != nil {
		s.logger.Warn("favorites change not persisted",
			"device_id", deviceID, "op", op, "id", m.ID, "error", err)
		s.countPersistFailure()
	}
	if !m.Changed {
		return
	}

	if s.recorder != nil {
		s.recorder.CountFavoriteChange(op)
	}
	if s.publisher != nil {
		s.publisher.Publish(deviceID, EventChanged, ChangedEvent{
			ID:    m.ID,
			Op:    op,
			Count: m.Count,
			IDs:   st.IDs(),
		})
	}
}

func (s *Service) countPersistFailure() {
	if s.recorder != nil {
		s.recorder.CountPersistFailure(store.KeyFavoriteItems)
	}
}
