// Package store persists document authentication records.
package store

import (
	"context"
	"errors"
	"time"

	"docauth/internal/docauth/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the record persistence operations.
// Implementations must be safe for concurrent use, though the orchestration
// flow never has two writers on the same record.
type Store interface {
	// Create inserts a new record. The record must carry a fresh ID.
	Create(ctx context.Context, record *models.AuthenticationRecord) error

	// Update persists the record's outcome fields by ID.
	Update(ctx context.Context, record *models.AuthenticationRecord) error

	// Find retrieves a record by ID.
	Find(ctx context.Context, id uuid.UUID) (*models.AuthenticationRecord, error)

	// ListByCitizen returns all records for a citizen, newest first.
	ListByCitizen(ctx context.Context, idCitizen int64) ([]*models.AuthenticationRecord, error)

	// ListUnpublished returns up to limit terminal records whose result event
	// has not been published, oldest first. Used by the reconciler sweep.
	ListUnpublished(ctx context.Context, limit int) ([]*models.AuthenticationRecord, error)

	// MarkEventPublished flips the record's event_published flag to true.
	// The flag is monotonic: marking an already-published record is a no-op.
	MarkEventPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}
