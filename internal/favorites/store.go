// Package favorites tracks the listing ids a device has marked as favorite.
//
// The set is held in memory and re-serialized in full to the device's
// storage namespace on every change. Storage problems never lose the
// in-memory state: the store keeps working and reports the failure to the
// caller as ErrPersist or ErrCorrupt.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/visitgevgelija/guide-server/internal/store"
)

var (
	// ErrPersist means the storage medium could not be read or written.
	ErrPersist = errors.New("favorites: storage unavailable")

	// ErrCorrupt means the persisted value was not a JSON array of strings.
	ErrCorrupt = errors.New("favorites: persisted data is malformed")
)

// Mutation describes the outcome of Add or Remove.
type Mutation struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
	Count   int    `json:"count"`
	// Persisted is false when the change lives only in memory.
	Persisted bool `json:"persisted"`
}

// Store is the favorites set of one device.
type Store struct {
	kv  store.KV
	key string

	mu  sync.RWMutex
	ids []string
	set map[string]struct{}
}

// Open loads the favorites of deviceID from kv.
//
// Open always returns a usable store. When the persisted value is missing
// the set is empty and err is nil. When it is malformed or unreadable the
// set is empty and err wraps ErrCorrupt or ErrPersist.
func Open(ctx context.Context, kv store.KV, deviceID string) (*Store, error) {
	s := &Store{
		kv:  kv,
		key: store.DeviceKey(deviceID, store.KeyFavoriteItems),
		set: make(map[string]struct{}),
	}

	data, err := kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s, nil
	case err != nil:
		return s, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return s, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	for _, id := range ids {
		s.insert(id)
	}
	return s, nil
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[id]
	return ok
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IDs returns the favorites in the order they were added.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Add appends id. Adding an id already present changes nothing and does not
// touch storage.
func (s *Store) Add(ctx context.Context, id string) (Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.insert(id) {
		return Mutation{ID: id, Count: len(s.ids), Persisted: true}, nil
	}
	return s.persistLocked(ctx, id)
}

// Remove deletes id. Removing an absent id changes nothing.
func (s *Store) Remove(ctx context.Context, id string) (Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[id]; !ok {
		return Mutation{ID: id, Count: len(s.ids), Persisted: true}, nil
	}
	delete(s.set, id)
	s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == id })
	return s.persistLocked(ctx, id)
}

func (s *Store) insert(id string) bool {
	if _, ok := s.set[id]; ok {
		return false
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// persistLocked writes the full set. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context, id string) (Mutation, error) {
	m := Mutation{ID: id, Changed: true, Count: len(s.ids)}

	data, err := json.Marshal(s.snapshotLocked())
	if err == nil {
		err = s.kv.Set(ctx, s.key, data)
	}
	if err != nil {
		return m, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	m.Persisted = true
	return m, nil
}

// snapshotLocked never returns nil so an empty set serializes as [].
func (s *Store) snapshotLocked() []string {
	if s.ids == nil {
		return []string{}
	}
	return s.ids
}
