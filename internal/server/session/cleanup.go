package session

import (
	"context"
	"log/slog"
	"time"

	"drive/internal/server/metrics"
)

// CleanupService periodically removes sessions that have been idle
// longer than the configured TTL.
type CleanupService struct {
	store    *Store
	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(store *Store, ttl, interval time.Duration) *CleanupService {
	return &CleanupService{
		store:    store,
		ttl:      ttl,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the cleanup loop in a background goroutine.
func (cs *CleanupService) Start(ctx context.Context) {
	slog.Info("session cleanup started", "interval", cs.interval, "ttl", cs.ttl)

	go func() {
		ticker := time.NewTicker(cs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cs.runCleanup()
			case <-ctx.Done():
				slog.Info("session cleanup stopping")
				close(cs.done)
				return
			}
		}
	}()
}

// Wait blocks until the cleanup service has fully stopped.
func (cs *CleanupService) Wait() {
	<-cs.done
}

func (cs *CleanupService) runCleanup() int {
	cutoff := cs.store.now().Add(-cs.ttl)
	removed := cs.store.Expire(cutoff)
	metrics.SetSessionsActive(cs.store.Count())

	if removed > 0 {
		slog.Info("expired idle sessions",
			"removed", removed,
			"remaining", cs.store.Count(),
		)
	}
	return removed
}
