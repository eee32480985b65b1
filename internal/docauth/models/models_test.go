package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusError.Terminal())
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2025, 1, 30, 10, 0, 0, 0, time.UTC)
	record := NewRecord(42, "https://docs/1", "Cedula", "msg-1", "doc-1", now)

	require.NotNil(t, record)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", record.ID.String())
	assert.Equal(t, StatusPending, record.Status)
	assert.Equal(t, int64(42), record.IDCitizen)
	assert.Equal(t, "msg-1", record.MessageID)
	assert.Equal(t, "doc-1", record.DocumentID)
	assert.False(t, record.AuthSuccess)
	assert.False(t, record.EventPublished)
	assert.Equal(t, now, record.CreatedAt)
	assert.Equal(t, now, record.UpdatedAt)
}

func TestApplyOutcome(t *testing.T) {
	created := time.Date(2025, 1, 30, 10, 0, 0, 0, time.UTC)
	applied := created.Add(2 * time.Second)
	code := 404

	tests := []struct {
		name    string
		outcome Outcome
		check   func(t *testing.T, record AuthenticationRecord)
	}{
		{
			name:    "success",
			outcome: SuccessOutcome(200, json.RawMessage(`{"ok":true}`)),
			check: func(t *testing.T, record AuthenticationRecord) {
				assert.Equal(t, StatusSuccess, record.Status)
				assert.True(t, record.AuthSuccess)
				require.NotNil(t, record.StatusCode)
				assert.Equal(t, 200, *record.StatusCode)
				assert.Empty(t, record.ErrorMessage)
				assert.JSONEq(t, `{"ok":true}`, string(record.ResponseData))
			},
		},
		{
			name:    "failed",
			outcome: FailedOutcome(&code, "Citizen not found", nil),
			check: func(t *testing.T, record AuthenticationRecord) {
				assert.Equal(t, StatusFailed, record.Status)
				assert.False(t, record.AuthSuccess)
				require.NotNil(t, record.StatusCode)
				assert.Equal(t, 404, *record.StatusCode)
				assert.Equal(t, "Citizen not found", record.ErrorMessage)
			},
		},
		{
			name:    "failed without status code",
			outcome: FailedOutcome(nil, "Authentication failed", nil),
			check: func(t *testing.T, record AuthenticationRecord) {
				assert.Equal(t, StatusFailed, record.Status)
				assert.Nil(t, record.StatusCode)
			},
		},
		{
			name:    "error",
			outcome: ErrorOutcome("authority [timeout]: request timeout"),
			check: func(t *testing.T, record AuthenticationRecord) {
				assert.Equal(t, StatusError, record.Status)
				assert.False(t, record.AuthSuccess)
				assert.Nil(t, record.StatusCode)
				assert.Equal(t, "authority [timeout]: request timeout", record.ErrorMessage)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := NewRecord(42, "https://docs/1", "Cedula", "", "", created)
			updated, err := ApplyOutcome(*pending, tt.outcome, applied)
			require.NoError(t, err)
			assert.Equal(t, applied, updated.UpdatedAt)
			assert.Equal(t, created, updated.CreatedAt)
			tt.check(t, updated)

			// The input record is untouched.
			assert.Equal(t, StatusPending, pending.Status)
		})
	}
}

func TestApplyOutcomeRejectsSecondTransition(t *testing.T) {
	now := time.Now()
	pending := NewRecord(42, "https://docs/1", "Cedula", "", "", now)
	terminal, err := ApplyOutcome(*pending, SuccessOutcome(200, nil), now)
	require.NoError(t, err)

	_, err = ApplyOutcome(terminal, ErrorOutcome("boom"), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already SUCCESS")
}

func TestApplyOutcomeRejectsNonTerminalOutcome(t *testing.T) {
	now := time.Now()
	pending := NewRecord(42, "https://docs/1", "Cedula", "", "", now)

	_, err := ApplyOutcome(*pending, Outcome{Status: StatusPending}, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not terminal")
}

func TestNewResultEvent(t *testing.T) {
	at := time.Date(2025, 1, 30, 10, 0, 0, 0, time.FixedZone("COT", -5*3600))
	record := NewRecord(1234567890, "https://docs/1", "Cedula", "msg-1", "doc-1", at)

	success, err := ApplyOutcome(*record, SuccessOutcome(200, nil), at)
	require.NoError(t, err)
	event := NewResultEvent(&success, at)
	assert.Equal(t, "msg-1", event.MessageID)
	assert.Equal(t, "doc-1", event.DocumentID)
	assert.Equal(t, int64(1234567890), event.IDCitizen)
	assert.True(t, event.Authenticated)
	assert.Equal(t, EventMessageAuthenticated, event.Message)
	assert.Equal(t, "2025-01-30T10:00:00-05:00", event.AuthenticatedAt)

	code := 404
	failed, err := ApplyOutcome(*record, FailedOutcome(&code, "Citizen not found", nil), at)
	require.NoError(t, err)
	event = NewResultEvent(&failed, at)
	assert.False(t, event.Authenticated)
	assert.Equal(t, EventMessageRejected, event.Message)
}

func TestResultEventJSONContract(t *testing.T) {
	event := ResultEvent{
		MessageID:       "msg-1",
		DocumentID:      "doc-1",
		IDCitizen:       42,
		Authenticated:   true,
		Message:         EventMessageAuthenticated,
		AuthenticatedAt: "2025-01-30T10:00:00Z",
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"messageId": "msg-1",
		"documentId": "doc-1",
		"idCitizen": 42,
		"authenticated": true,
		"message": "Document authenticated successfully",
		"authenticatedAt": "2025-01-30T10:00:00Z"
	}`, string(payload))
}
