package worker

import (
	"context"
	"log/slog"
	"time"
)

// QuoteRefresher defines the interface for refreshing stored price quotes.
type QuoteRefresher interface {
	FetchAndStore(ctx context.Context) error
}

// RefreshWorker periodically snapshots top-asset prices into storage.
type RefreshWorker struct {
	refresher QuoteRefresher
	interval  time.Duration
	failures  int
}

// NewRefreshWorker creates a new RefreshWorker.
func NewRefreshWorker(refresher QuoteRefresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run refreshes once on startup, then on every tick. It blocks until the
// context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting", "interval", w.interval)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// refresh runs one snapshot. Consecutive failures are counted so a provider
// outage shows up as a growing streak in the logs rather than isolated lines.
func (w *RefreshWorker) refresh(ctx context.Context) {
	start := time.Now()
	if err := w.refresher.FetchAndStore(ctx); err != nil {
		w.failures++
		slog.Error("RefreshWorker: refresh failed", "error", err, "consecutive", w.failures)
		return
	}
	w.failures = 0
	slog.Info("RefreshWorker: refresh completed", "elapsed", time.Since(start).Round(time.Millisecond))
}
