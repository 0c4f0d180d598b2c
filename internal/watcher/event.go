package watcher

import (
	"path/filepath"
	"slices"
	"strings"
)

// EventType represents the type of file system event
type EventType int

const (
	// EventChanged is emitted when a file is created or written (after settling)
	EventChanged EventType = iota
	// EventRemoved is emitted when a file is deleted or renamed away
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one file's net change within a batch.
type Event struct {
	Type EventType
	Path string
}

// Batch is the set of changes collected over one settle window, ordered by
// path. A file appears at most once, with its last observed change.
type Batch []Event

// Files returns the base names of the changed files.
func (b Batch) Files() []string {
	out := make([]string, len(b))
	for i, e := range b {
		out[i] = filepath.Base(e.Path)
	}
	return out
}

func newBatch(changes map[string]EventType) Batch {
	b := make(Batch, 0, len(changes))
	for path, typ := range changes {
		b = append(b, Event{Type: typ, Path: path})
	}
	slices.SortFunc(b, func(x, y Event) int { return strings.Compare(x.Path, y.Path) })
	return b
}
