package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a Badger store in a temp directory.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "guide-store-test-*")
	require.NoError(t, err)

	s, err := New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

// runKVContract exercises behavior every backend must share.
func runKVContract(t *testing.T, kv KV) {
	ctx := context.Background()
	key := DeviceKey("device-1", KeyFavoriteItems)

	t.Run("get missing", func(t *testing.T) {
		_, err := kv.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, key, []byte(`["a","b"]`)))
		got, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, key, []byte(`["c"]`)))
		got, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `["c"]`, string(got))
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		_, err := kv.Get(ctx, DeviceKey("device-2", KeyFavoriteItems))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Delete(ctx, key))
		_, err := kv.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, kv.Delete(ctx, key), "deleting an absent key is a no-op")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, kv.Set(cctx, key, []byte("x")), context.Canceled)
	})
}

func TestBadgerStore_Contract(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	runKVContract(t, s)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	s, err := New(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, DeviceKey("d", KeyAppLanguage), []byte(`"en"`)))
	require.NoError(t, s.Close())

	reopened, err := New(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, DeviceKey("d", KeyAppLanguage))
	require.NoError(t, err)
	assert.Equal(t, `"en"`, string(got))
}

func TestBadgerStore_ClosedReportsErrClosed(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemory_Contract(t *testing.T) {
	runKVContract(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Set(context.Background(), "k", nil), ErrClosed)
}

func TestRedis_Contract(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	r, err := NewRedis(context.Background(), RedisOptions{Addr: addr, Prefix: "guide-test:" + t.Name() + ":"}, nil)
	require.NoError(t, err)
	defer r.Close()

	runKVContract(t, r)
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(context.Background(), RedisOptions{Addr: "127.0.0.1:1"}, nil)
	assert.ErrorContains(t, err, "ping failed")
}

func TestDeviceKey(t *testing.T) {
	assert.Equal(t, "device:3f2a:mobileViewMode", DeviceKey("3f2a", KeyMobileViewMode))
}
