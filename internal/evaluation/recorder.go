package evaluation

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/directive/pkg/lifecycle"
)

// UsageStore persists usage counters for applied instructions.
type UsageStore interface {
	IncrementUsage(ctx context.Context, user string, ids []uuid.UUID) error
}

// Recorder increments usage counters in the background. Records never
// block the caller; when every slot is busy the record is dropped.
type Recorder struct {
	store   UsageStore
	logger  *slog.Logger
	timeout time.Duration
	slots   *semaphore.Weighted

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder creates a Recorder running at most concurrency increments
// at once, each bounded by timeout.
func NewRecorder(store UsageStore, logger *slog.Logger, timeout time.Duration, concurrency int) *Recorder {
	return &Recorder{
		store:   store,
		logger:  logger.With("system", "usage-recorder"),
		timeout: timeout,
		slots:   semaphore.NewWeighted(int64(max(concurrency, 1))),
	}
}

// Record dispatches an increment for ids and reports whether it was
// accepted. The increment runs on a context detached from any request.
// Records arriving after Wait has begun are dropped.
func (r *Recorder) Record(user string, ids []uuid.UUID) bool {
	if len(ids) == 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Warn("usage recorder closed, dropping record", "user", user, "count", len(ids))
		return false
	}
	if !r.slots.TryAcquire(1) {
		r.logger.Warn("usage recorder saturated, dropping record", "user", user, "count", len(ids))
		return false
	}

	batch := slices.Clone(ids)
	r.wg.Go(func() {
		defer r.slots.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.IncrementUsage(ctx, user, batch); err != nil {
			r.logger.Error("usage increment failed", "user", user, "count", len(batch), "error", err)
		}
	})
	return true
}

// Wait stops accepting records and blocks until every dispatched record
// has finished.
func (r *Recorder) Wait() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.wg.Wait()
}

// Start registers a shutdown hook that drains in-flight records.
func (r *Recorder) Start(lc *lifecycle.Coordinator) {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		r.logger.Info("draining usage recorder")
		r.Wait()
		r.logger.Info("usage recorder drained")
	})
}
