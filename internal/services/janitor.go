package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/pastebin-lite/pastebin-lite/internal/clock"
	"github.com/pastebin-lite/pastebin-lite/internal/metrics"
	"github.com/pastebin-lite/pastebin-lite/storage"
)

// Janitor periodically sweeps expired pastes out of the store. This is
// storage reclamation only: availability never depends on the sweep, and
// backends with native TTL reclamation simply report zero purges.
type Janitor struct {
	store    storage.PasteStore
	interval time.Duration
	clk      clock.Clock
	logger   *slog.Logger
}

// NewJanitor creates a janitor sweeping at the given interval.
func NewJanitor(store storage.PasteStore, interval time.Duration, clk clock.Clock, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		clk:      clk,
		logger:   logger,
	}
}

// Run sweeps until ctx is cancelled. It blocks and is meant to be started in
// its own goroutine.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	purged, err := j.store.PurgeExpired(ctx, j.clk.Now())
	if err != nil {
		j.logger.Error("expired paste sweep failed", "error", err)
		metrics.StorageErrors.WithLabelValues("purge").Inc()
		return
	}
	if purged > 0 {
		j.logger.Info("purged expired pastes", "count", purged)
		metrics.PastesPurged.Add(float64(purged))
	}
}
