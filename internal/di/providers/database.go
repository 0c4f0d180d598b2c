package providers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/visitgevgelija/guide-server/internal/config"
	"github.com/visitgevgelija/guide-server/internal/logger"
	"github.com/visitgevgelija/guide-server/internal/metrics"
	"github.com/visitgevgelija/guide-server/internal/sse"
	"github.com/visitgevgelija/guide-server/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	manager := sse.NewManager(log.Logger, m)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the device key-value store with shutdown capability.
type StoreHandle struct {
	store.KV
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the device store for the configured backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		kv, err := store.NewRedis(ctx, store.RedisOptions{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		}, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("Device store initialized", "backend", "redis", "addr", cfg.Storage.RedisAddr)
		return &StoreHandle{KV: kv}, nil

	case config.BackendMemory:
		log.Warn("Device store is in memory; favorites and preferences are lost on restart")
		return &StoreHandle{KV: store.NewMemory()}, nil

	default:
		dbPath := filepath.Join(cfg.Storage.MetadataPath, "db")
		db, err := store.New(dbPath, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Device store initialized", "backend", "badger", "path", dbPath)
		return &StoreHandle{KV: db}, nil
	}
}
