package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"docauth/internal/docauth/models"

	"github.com/google/uuid"
)

// PostgresStore persists authentication records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, record *models.AuthenticationRecord) error {
	if record == nil {
		return fmt.Errorf("authentication record is required")
	}
	query := `
		INSERT INTO document_authentications (
			id, id_citizen, url_document, document_title, message_id, document_id,
			status, auth_success, status_code, error_message, response_data,
			event_published, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.IDCitizen,
		record.URLDocument,
		record.DocumentTitle,
		record.MessageID,
		record.DocumentID,
		string(record.Status),
		record.AuthSuccess,
		nullableInt(record.StatusCode),
		record.ErrorMessage,
		nullableBytes(record.ResponseData),
		record.EventPublished,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create authentication record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, record *models.AuthenticationRecord) error {
	if record == nil {
		return fmt.Errorf("authentication record is required")
	}
	query := `
		UPDATE document_authentications
		SET status = $2, auth_success = $3, status_code = $4, error_message = $5,
			response_data = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Status),
		record.AuthSuccess,
		nullableInt(record.StatusCode),
		record.ErrorMessage,
		nullableBytes(record.ResponseData),
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update authentication record: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id uuid.UUID) (*models.AuthenticationRecord, error) {
	query := selectColumns + ` WHERE id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find authentication record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, idCitizen int64) ([]*models.AuthenticationRecord, error) {
	query := selectColumns + ` WHERE id_citizen = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, idCitizen)
	if err != nil {
		return nil, fmt.Errorf("list authentication records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *PostgresStore) ListUnpublished(ctx context.Context, limit int) ([]*models.AuthenticationRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := selectColumns + `
		WHERE status IN ('SUCCESS', 'FAILED', 'ERROR') AND event_published = FALSE
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *PostgresStore) MarkEventPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	// Setting the flag twice is harmless; it only ever moves false -> true.
	query := `
		UPDATE document_authentications
		SET event_published = TRUE, updated_at = $2
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `
	SELECT id, id_citizen, url_document, document_title, message_id, document_id,
		status, auth_success, status_code, error_message, response_data,
		event_published, created_at, updated_at
	FROM document_authentications
`

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.AuthenticationRecord, error) {
	var record models.AuthenticationRecord
	var status string
	var statusCode sql.NullInt64
	var responseData []byte
	if err := row.Scan(
		&record.ID,
		&record.IDCitizen,
		&record.URLDocument,
		&record.DocumentTitle,
		&record.MessageID,
		&record.DocumentID,
		&status,
		&record.AuthSuccess,
		&statusCode,
		&record.ErrorMessage,
		&responseData,
		&record.EventPublished,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	record.Status = models.Status(status)
	if statusCode.Valid {
		code := int(statusCode.Int64)
		record.StatusCode = &code
	}
	if len(responseData) > 0 {
		record.ResponseData = responseData
	}
	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]*models.AuthenticationRecord, error) {
	var records []*models.AuthenticationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan authentication record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authentication records: %w", err)
	}
	return records, nil
}

func nullableInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}
