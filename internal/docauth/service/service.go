// Package service sequences the document authentication workflow: durable
// record creation, the external authenticity check, the status transition,
// and result event publication.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docauth/internal/docauth/authority"
	"docauth/internal/docauth/events"
	"docauth/internal/docauth/metrics"
	"docauth/internal/docauth/models"
	"docauth/internal/docauth/store"
	dErrors "docauth/pkg/domain-errors"
)

// fallbackRejectionMessage is recorded when the authority declines a
// document without supplying its own message.
const fallbackRejectionMessage = "Authentication failed"

// Service orchestrates document authentication attempts. All collaborators
// are injected so the flow is independently testable with substitutable fakes.
type Service struct {
	store     store.Store
	authority authority.Client
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with required collaborators and options applied.
func New(recordStore store.Store, authorityClient authority.Client, publisher events.Publisher, opts ...Option) (*Service, error) {
	if recordStore == nil || authorityClient == nil || publisher == nil {
		return nil, fmt.Errorf("recordStore, authorityClient, and publisher are required")
	}
	svc := &Service{
		store:     recordStore,
		authority: authorityClient,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Process runs one document authentication attempt.
//
// A PENDING record is created before the authority call; it transitions
// exactly once to SUCCESS, FAILED, or ERROR. A business rejection (FAILED)
// is a normal return, not an error. System faults return an error alongside
// the terminal record:
//
//   - If the authority call fails, the record reaches ERROR and the original
//     call error is returned after a best-effort event publish.
//   - If the event publish fails after a SUCCESS or FAILED transition, the
//     publish error is returned; the record keeps its terminal status with
//     event_published false, and an external sweep may retry publication.
func (s *Service) Process(ctx context.Context, idCitizen int64, urlDocument, documentTitle, messageID, documentID string) (*models.AuthenticationRecord, error) {
	if idCitizen <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "idCitizen must be a positive integer")
	}
	if urlDocument == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "urlDocument is required")
	}
	if documentTitle == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "documentTitle is required")
	}

	s.logger.Info("processing document authentication",
		"id_citizen", idCitizen,
		"document_title", documentTitle,
	)

	record := models.NewRecord(idCitizen, urlDocument, documentTitle, messageID, documentID, s.now())
	if err := s.store.Create(ctx, record); err != nil {
		// Fail fast: no authority call is attempted when the record cannot
		// be created.
		return nil, fmt.Errorf("create authentication record: %w", err)
	}

	callStart := time.Now()
	resp, callErr := s.authority.Authenticate(ctx, idCitizen, urlDocument, documentTitle)
	if s.metrics != nil {
		s.metrics.ObserveAuthorityCall(time.Since(callStart).Seconds())
	}

	if callErr != nil {
		return s.handleAuthorityFailure(ctx, record, callErr)
	}

	var outcome models.Outcome
	if resp.Authenticated() {
		outcome = models.SuccessOutcome(resp.StatusCode, resp.Data)
	} else {
		message := resp.Message
		if message == "" {
			message = fallbackRejectionMessage
		}
		var statusCode *int
		if resp.StatusCode != 0 {
			code := resp.StatusCode
			statusCode = &code
		}
		outcome = models.FailedOutcome(statusCode, message, resp.Data)
	}

	updated, err := models.ApplyOutcome(*record, outcome, s.now())
	if err != nil {
		return record, dErrors.Wrap(err, dErrors.CodeInternal, "apply authentication outcome")
	}
	if err := s.store.Update(ctx, &updated); err != nil {
		return &updated, fmt.Errorf("update authentication record: %w", err)
	}
	s.recordOutcome(updated.Status)

	if updated.AuthSuccess {
		s.logger.Info("document authenticated", "id_citizen", idCitizen, "record_id", updated.ID)
	} else {
		s.logger.Warn("document authentication rejected",
			"id_citizen", idCitizen,
			"record_id", updated.ID,
			"message", updated.ErrorMessage,
		)
	}

	if err := s.publishResult(ctx, &updated); err != nil {
		// The record stays at its terminal status with event_published
		// false; the caller or the reconciler sweep retries publication.
		return &updated, err
	}

	return &updated, nil
}

// handleAuthorityFailure transitions the record to ERROR, attempts a
// best-effort event publish, and re-raises the original call error.
func (s *Service) handleAuthorityFailure(ctx context.Context, record *models.AuthenticationRecord, callErr error) (*models.AuthenticationRecord, error) {
	s.logger.Error("authority call failed",
		"id_citizen", record.IDCitizen,
		"record_id", record.ID,
		"error", callErr,
	)

	updated, err := models.ApplyOutcome(*record, models.ErrorOutcome(callErr.Error()), s.now())
	if err != nil {
		return record, callErr
	}
	if uerr := s.store.Update(ctx, &updated); uerr != nil {
		s.logger.Error("failed to persist error outcome", "record_id", record.ID, "error", uerr)
	}
	s.recordOutcome(updated.Status)

	// Secondary publish: failure here is reported, never propagated, so the
	// original authority error is what reaches the caller.
	if pubErr := s.publishResult(ctx, &updated); pubErr != nil {
		s.logger.Error("secondary result publish failed",
			"record_id", updated.ID,
			"error", pubErr,
		)
	}

	return &updated, callErr
}

// publishResult builds and publishes the result event for a terminal record,
// then marks the record published. This is the only place the
// event_published flag is ever set.
func (s *Service) publishResult(ctx context.Context, record *models.AuthenticationRecord) error {
	event := models.NewResultEvent(record, s.now())
	if err := s.publisher.PublishResult(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.IncPublishFailure()
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.IncEventPublished()
	}
	if err := s.store.MarkEventPublished(ctx, record.ID, s.now()); err != nil {
		// The event is already on the wire. The reconciler will republish and
		// the consumer deduplicates on messageId, so log rather than fail.
		s.logger.Error("failed to mark event published", "record_id", record.ID, "error", err)
		return nil
	}
	record.EventPublished = true
	return nil
}

// History returns all authentication records for a citizen, newest first.
func (s *Service) History(ctx context.Context, idCitizen int64) ([]*models.AuthenticationRecord, error) {
	if idCitizen <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "idCitizen must be a positive integer")
	}
	records, err := s.store.ListByCitizen(ctx, idCitizen)
	if err != nil {
		return nil, fmt.Errorf("list authentication history: %w", err)
	}
	return records, nil
}

func (s *Service) recordOutcome(status models.Status) {
	if s.metrics != nil {
		s.metrics.RecordOutcome(string(status))
	}
}
