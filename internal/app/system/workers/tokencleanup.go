// internal/app/system/workers/tokencleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ExpiredTokenPurger deletes bearer tokens whose expires_at has passed.
// tokenstore.Store satisfies it.
type ExpiredTokenPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenCleanup is a background worker that removes expired bearer tokens.
// Expired tokens are already rejected at lookup; this only keeps the
// collection small.
type TokenCleanup struct {
	tokens   ExpiredTokenPurger
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTokenCleanup creates a worker that purges expired tokens every interval.
func NewTokenCleanup(tokens ExpiredTokenPurger, logger *zap.Logger, interval time.Duration) *TokenCleanup {
	return &TokenCleanup{
		tokens:   tokens,
		log:      logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *TokenCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("token cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call twice.
func (w *TokenCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("token cleanup worker stopped")
}

func (w *TokenCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *TokenCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	count, err := w.tokens.DeleteExpired(ctx, w.now().UTC())
	if err != nil {
		w.log.Error("failed to delete expired tokens", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("deleted expired tokens", zap.Int64("count", count))
	}
}
