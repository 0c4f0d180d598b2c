package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/visitgevgelija/guide-server/internal/config"
	"github.com/visitgevgelija/guide-server/internal/logger"
	"github.com/visitgevgelija/guide-server/internal/service"
	"github.com/visitgevgelija/guide-server/internal/watcher"
)

// FileWatcherHandle wraps the data directory watcher with shutdown
// capability. Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the data directory watcher. Settled batches of
// changed files invalidate the search entries and the homepage snapshot.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Catalog.Watch || cfg.Catalog.DataPath == "" {
		log.Info("Data directory watching disabled")
		return &FileWatcherHandle{cancel: func() {}}, nil
	}

	catalogService := do.MustInvoke[*service.CatalogService](i)

	w, err := watcher.New(log.Logger, watcher.Options{
		Extensions:   []string{".json"},
		SettleDelay:  cfg.Catalog.SettleDelay,
		IgnoreHidden: true,
	}, func(batch watcher.Batch) {
		catalogService.DataChanged(batch.Files())
	})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(cfg.Catalog.DataPath); err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	log.Info("File watcher started", "path", cfg.Catalog.DataPath)

	return &FileWatcherHandle{Watcher: w, cancel: cancel}, nil
}
