package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitgevgelija/guide-server/internal/logger"
)

func startWatcher(t *testing.T, dir string) <-chan Batch {
	t.Helper()

	batches := make(chan Batch, 10)
	w, err := New(logger.Discard().Logger, Options{
		SettleDelay: 50 * time.Millisecond,
		Extensions:  []string{".json"},
	}, func(b Batch) { batches <- b })
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return batches
}

func waitBatch(t *testing.T, batches <-chan Batch) Batch {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for batch")
		return nil
	}
}

func TestWatch_RejectsFiles(t *testing.T) {
	w, err := New(logger.Discard().Logger, Options{}, nil)
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	file := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o644))
	assert.Error(t, w.Watch(file))
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_BatchesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, dir)

	for _, name := range []string{"ponudi.json", "banners.json"} {
		for i := range 3 {
			data := []byte(`[{"id":"` + string(rune('a'+i)) + `"}]`)
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	b := waitBatch(t, batches)
	assert.Equal(t, []string{"banners.json", "ponudi.json"}, b.Files())
	for _, e := range b {
		assert.Equal(t, EventChanged, e.Type)
	}

	select {
	case extra := <-batches:
		t.Fatalf("unexpected second batch %v", extra.Files())
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_Removal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pomos.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	batches := startWatcher(t, dir)

	require.NoError(t, os.Remove(path))

	b := waitBatch(t, batches)
	require.Len(t, b, 1)
	assert.Equal(t, EventRemoved, b[0].Type)
	assert.Equal(t, "pomos.json", b.Files()[0])
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(logger.Discard().Logger, Options{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StopRightAfterStartWaitsForLoop(t *testing.T) {
	for range 50 {
		w, err := New(logger.Discard().Logger, Options{}, nil)
		require.NoError(t, err)
		require.NoError(t, w.Watch(t.TempDir()))

		w.Start(context.Background())

		stopped := make(chan error, 1)
		go func() { stopped <- w.Stop() }()

		select {
		case err := <-stopped:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Stop did not return")
		}
	}
}
