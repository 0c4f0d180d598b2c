// Package sse implements Server-Sent Events so open guide tabs of the same
// device stay in sync.
package sse

import "time"

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventFavoritesChanged is sent to a device after its favorites change.
	EventFavoritesChanged EventType = "favorites.changed"
	// EventPreferencesChanged is sent to a device after its preferences change.
	EventPreferencesChanged EventType = "preferences.changed"
	// EventCatalogChanged is broadcast when the dataset files change on disk.
	EventCatalogChanged EventType = "catalog.changed"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// DeviceID limits delivery to one device's clients. Empty means all.
	DeviceID string `json:"-"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// CatalogChangedEventData lists the dataset files that changed.
type CatalogChangedEventData struct {
	Files []string `json:"files"`
}

// NewEvent creates an event for every client.
func NewEvent(eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewDeviceEvent creates an event for one device's clients.
func NewDeviceEvent(deviceID string, eventType EventType, data any) Event {
	e := NewEvent(eventType, data)
	e.DeviceID = deviceID
	return e
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
