// Package syncqueue pushes invoice snapshots to a spreadsheet mirror in the
// background. Saving never waits for the mirror and a failed push never
// touches local state.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
	"invoicedesk/pkg/models"
)

// DefaultTimeout bounds a single push.
const DefaultTimeout = 30 * time.Second

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("sync queue closed")

// Mirror replaces the remote copy of the invoice table with records.
type Mirror interface {
	Replace(ctx context.Context, records []invoice.Record) error
}

// Marker records a successful push.
type Marker interface {
	MarkSynced(ctx context.Context, at time.Time) error
}

// Queue runs at most one push at a time. While a push is in flight, newer
// snapshots replace each other in a single pending slot; only the latest is
// pushed next.
type Queue struct {
	mirror  Mirror
	marker  Marker
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.Mutex
	pending []models.Invoice
	queued  bool
	running bool
	closed  bool
	wg      conc.WaitGroup
}

// Option customises a Queue.
type Option func(*Queue)

// WithTimeout sets the per-push timeout.
func WithTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New returns a queue pushing to mirror. marker may be nil.
func New(mirror Mirror, marker Marker, opts ...Option) *Queue {
	q := &Queue{
		mirror:  mirror,
		marker:  marker,
		timeout: DefaultTimeout,
		now:     time.Now,
		log:     logger.WithComponent("sync-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue schedules a push of snapshot and returns immediately.
func (q *Queue) Enqueue(snapshot []models.Invoice) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if q.queued {
		q.log.Debug().Msg("Replacing pending snapshot")
	}
	q.pending = snapshot
	q.queued = true

	if !q.running {
		q.running = true
		q.wg.Go(q.run)
	}
	return nil
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if !q.queued {
			q.running = false
			q.mu.Unlock()
			return
		}
		snapshot := q.pending
		q.pending = nil
		q.queued = false
		q.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.Push(ctx, snapshot); err != nil {
			q.log.Warn().
				Err(err).
				Int("invoices", len(snapshot)).
				Msg("Spreadsheet sync failed, local data is unaffected")
		}
		cancel()
	}
}

// Push mirrors snapshot synchronously and records the sync time on success.
func (q *Queue) Push(ctx context.Context, snapshot []models.Invoice) error {
	const op = "Push"

	records := invoice.FlattenAll(snapshot)
	if err := q.mirror.Replace(ctx, records); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	at := q.now()
	q.log.Info().
		Int("invoices", len(records)).
		Msg("Spreadsheet sync completed")

	if q.marker != nil {
		if err := q.marker.MarkSynced(ctx, at); err != nil {
			return fmt.Errorf("%s: failed to record sync time: %w", op, err)
		}
	}
	return nil
}

// Close stops accepting snapshots and waits for pending pushes to finish, or
// for ctx to end.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.log.Warn().Msg("Gave up waiting for spreadsheet sync")
		return ctx.Err()
	}
}
