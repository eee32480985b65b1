// Package reconciler sweeps terminal authentication records whose result
// event was never published and republishes them.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docauth/internal/docauth/events"
	"docauth/internal/docauth/metrics"
	"docauth/internal/docauth/models"
	"docauth/internal/docauth/store"
)

// Worker polls the record store for unpublished terminal records and
// republishes their result events. Delivery is at-least-once: a record
// published but not marked will be republished on the next sweep, and the
// downstream consumer deduplicates.
type Worker struct {
	store     store.Store
	publisher events.Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures the Worker.
type Option func(*Worker)

// WithInterval sets the interval between sweeps.
func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithBatchSize sets the maximum number of records per sweep.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// New constructs a reconciler worker.
func New(recordStore store.Store, publisher events.Publisher, opts ...Option) (*Worker, error) {
	if recordStore == nil || publisher == nil {
		return nil, fmt.Errorf("recordStore and publisher are required")
	}
	w := &Worker{
		store:     recordStore,
		publisher: publisher,
		interval:  30 * time.Second,
		batchSize: 100,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start sweeps periodically until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "reconciler sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep and returns the number of events
// republished. Individual publish failures do not abort the sweep; the
// affected records stay pending for the next run.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	records, err := w.store.ListUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list unpublished records: %w", err)
	}
	if w.metrics != nil {
		w.metrics.SetUnpublishedPending(len(records))
	}
	if len(records) == 0 {
		return 0, nil
	}

	published := 0
	for _, record := range records {
		if err := w.republish(ctx, record); err != nil {
			w.logger.Error("failed to republish result event",
				"record_id", record.ID,
				"error", err,
			)
			if w.metrics != nil {
				w.metrics.IncPublishFailure()
			}
			continue
		}
		published++
		if w.metrics != nil {
			w.metrics.IncRepublished()
		}
	}

	if published > 0 {
		w.logger.Info("republished result events", "count", published, "pending", len(records)-published)
	}
	return published, nil
}

func (w *Worker) republish(ctx context.Context, record *models.AuthenticationRecord) error {
	event := models.NewResultEvent(record, w.now())
	if err := w.publisher.PublishResult(ctx, event); err != nil {
		return err
	}
	if err := w.store.MarkEventPublished(ctx, record.ID, w.now()); err != nil {
		// Published but not marked: the next sweep retries and the consumer
		// deduplicates.
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}
