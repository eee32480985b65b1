package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an authentication record.
// A record starts PENDING and moves exactly once to one of the
// terminal states.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusError   Status = "ERROR"
)

// Terminal reports whether the status is one a record does not leave.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusError
}

// AuthenticationRecord captures one document authentication attempt and its
// outcome. The record is created before the authority call so a crash
// mid-call still leaves an auditable PENDING row.
type AuthenticationRecord struct {
	ID            uuid.UUID
	IDCitizen     int64
	URLDocument   string
	DocumentTitle string

	// Correlation tokens supplied by the caller and echoed back unchanged
	// into the outbound event. Stored empty when never supplied.
	MessageID  string
	DocumentID string

	Status       Status
	AuthSuccess  bool
	StatusCode   *int
	ErrorMessage string
	ResponseData json.RawMessage

	EventPublished bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord creates a PENDING record for a fresh authentication attempt.
func NewRecord(idCitizen int64, urlDocument, documentTitle, messageID, documentID string, now time.Time) *AuthenticationRecord {
	return &AuthenticationRecord{
		ID:            uuid.New(),
		IDCitizen:     idCitizen,
		URLDocument:   urlDocument,
		DocumentTitle: documentTitle,
		MessageID:     messageID,
		DocumentID:    documentID,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Outcome describes the result of the authority call as applied to a record.
type Outcome struct {
	Status       Status
	StatusCode   *int
	ErrorMessage string
	ResponseData json.RawMessage
}

// SuccessOutcome builds the outcome for an authenticated document.
func SuccessOutcome(statusCode int, responseData json.RawMessage) Outcome {
	return Outcome{
		Status:       StatusSuccess,
		StatusCode:   &statusCode,
		ResponseData: responseData,
	}
}

// FailedOutcome builds the outcome for a document the authority declined.
// statusCode may be nil when the authority response carried none.
func FailedOutcome(statusCode *int, errorMessage string, responseData json.RawMessage) Outcome {
	return Outcome{
		Status:       StatusFailed,
		StatusCode:   statusCode,
		ErrorMessage: errorMessage,
		ResponseData: responseData,
	}
}

// ErrorOutcome builds the outcome for an authority call that could not
// complete. No status code is recorded.
func ErrorOutcome(errorMessage string) Outcome {
	return Outcome{
		Status:       StatusError,
		ErrorMessage: errorMessage,
	}
}

// ApplyOutcome returns a copy of record transitioned to the outcome's
// terminal status. It is the single place business state changes, keeping
// each transition a pure, testable step.
//
// The record must be PENDING and the outcome terminal; anything else is a
// programming error surfaced to the caller.
func ApplyOutcome(record AuthenticationRecord, outcome Outcome, now time.Time) (AuthenticationRecord, error) {
	if record.Status != StatusPending {
		return record, fmt.Errorf("record %s is already %s", record.ID, record.Status)
	}
	if !outcome.Status.Terminal() {
		return record, fmt.Errorf("outcome status %s is not terminal", outcome.Status)
	}

	record.Status = outcome.Status
	record.AuthSuccess = outcome.Status == StatusSuccess
	record.StatusCode = outcome.StatusCode
	record.ErrorMessage = outcome.ErrorMessage
	record.ResponseData = outcome.ResponseData
	record.UpdatedAt = now
	return record, nil
}
