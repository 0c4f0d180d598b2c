package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitgevgelija/guide-server/internal/logger"
)

const (
	deviceA = "9b2f3c1e-8d4a-4f6b-9c1d-2e3f4a5b6c7d"
	deviceB = "1c7e0f6a-5b2d-4e3f-8a9b-0c1d2e3f4a5b"
)

type gauge struct{ n atomic.Int32 }

func (g *gauge) SetSSEClients(n int) { g.n.Store(int32(n)) }

func startManager(t *testing.T) (*Manager, *gauge) {
	t.Helper()
	g := &gauge{}
	m := NewManager(logger.Discard().Logger, g)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m, g
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case e := <-c.EventChan:
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_DeviceScopedEvents(t *testing.T) {
	m, g := startManager(t)

	a, err := m.Connect(deviceA)
	require.NoError(t, err)
	b, err := m.Connect(deviceB)
	require.NoError(t, err)
	assert.Equal(t, int32(2), g.n.Load())
	assert.True(t, strings.HasPrefix(a.ID, "sse-"))

	m.Publish(deviceA, "favorites.changed", map[string]int{"count": 1})

	e := receive(t, a)
	assert.Equal(t, EventFavoritesChanged, e.Type)
	assert.Equal(t, deviceA, e.DeviceID)
	assertSilent(t, b)
}

func TestManager_BroadcastReachesEveryone(t *testing.T) {
	m, _ := startManager(t)

	a, _ := m.Connect(deviceA)
	anon, _ := m.Connect("")

	m.Broadcast(EventCatalogChanged, CatalogChangedEventData{Files: []string{"ponudi.json"}})

	assert.Equal(t, EventCatalogChanged, receive(t, a).Type)
	assert.Equal(t, EventCatalogChanged, receive(t, anon).Type)
}

func TestManager_Heartbeat(t *testing.T) {
	g := &gauge{}
	m := NewManager(logger.Discard().Logger, g)
	m.SetHeartbeatInterval(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	c, _ := m.Connect(deviceA)
	assert.Equal(t, EventHeartbeat, receive(t, c).Type)
}

func TestManager_DisconnectAndShutdown(t *testing.T) {
	m, g := startManager(t)

	a, _ := m.Connect(deviceA)
	b, _ := m.Connect(deviceB)
	m.Disconnect(a.ID)
	m.Disconnect(a.ID) // second call is a no-op
	assert.Equal(t, 1, m.ClientCount())
	assert.Equal(t, int32(1), g.n.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	_, open := <-b.Done
	assert.False(t, open)
	assert.Zero(t, m.ClientCount())

	m.Publish(deviceB, "favorites.changed", nil) // dropped, must not panic
	require.NoError(t, m.Shutdown(ctx))
}

func TestHandler_StreamsDeviceEvents(t *testing.T) {
	m, _ := startManager(t)
	srv := httptest.NewServer(NewHandler(m, logger.Discard().Logger))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?device="+strings.ToUpper(deviceA), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		require.True(t, lines.Scan())
		return lines.Text()
	}

	assert.Equal(t, "event: connected", next())
	assert.Contains(t, next(), deviceA, "device id is canonicalized")
	assert.Empty(t, next())

	m.Publish(deviceA, "preferences.changed", map[string]string{"appLanguage": "en"})
	assert.Equal(t, "event: preferences.changed", next())
	assert.Contains(t, next(), `"appLanguage":"en"`)
}

func TestHandler_RejectsBadDevice(t *testing.T) {
	m, _ := startManager(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?device=nope", nil)

	NewHandler(m, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"VALIDATION"`)
	assert.Contains(t, rec.Body.String(), `"device"`)
	assert.Zero(t, m.ClientCount())
}
