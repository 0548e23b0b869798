package worker

import (
	"context"
	"log/slog"
	"time"
)

// CachePurger drops stale cache entries and reports how many were removed.
type CachePurger interface {
	PurgeExpired() int
}

// Janitor periodically sweeps expired entries out of the result cache so
// long-idle keys do not pin memory between requests.
type Janitor struct {
	purger   CachePurger
	interval time.Duration
}

// NewJanitor creates a new cache Janitor.
func NewJanitor(purger CachePurger, interval time.Duration) *Janitor {
	return &Janitor{purger: purger, interval: interval}
}

// Run starts the sweep loop. It blocks until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	slog.Info("Janitor: starting")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Janitor: shutting down")
			return
		case <-ticker.C:
			if dropped := j.purger.PurgeExpired(); dropped > 0 {
				slog.Debug("Janitor: purged stale cache entries", "count", dropped)
			}
		}
	}
}
