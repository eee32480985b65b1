package models

import "time"

// Fixed presentation strings for the outbound event. These are consumer-facing
// and intentionally independent of the authority's own error text.
const (
	EventMessageAuthenticated = "Document authenticated successfully"
	EventMessageRejected      = "Document authentication failed"
)

// ResultEvent is the notification published when a record reaches a terminal
// status. Field names are part of the downstream consumer's contract.
type ResultEvent struct {
	MessageID       string `json:"messageId"`
	DocumentID      string `json:"documentId"`
	IDCitizen       int64  `json:"idCitizen"`
	Authenticated   bool   `json:"authenticated"`
	Message         string `json:"message"`
	AuthenticatedAt string `json:"authenticatedAt"`
}

// NewResultEvent shapes the outbound event for a terminal record.
// The timestamp is taken at publish time, not from the record.
func NewResultEvent(record *AuthenticationRecord, at time.Time) ResultEvent {
	message := EventMessageRejected
	if record.AuthSuccess {
		message = EventMessageAuthenticated
	}
	return ResultEvent{
		MessageID:       record.MessageID,
		DocumentID:      record.DocumentID,
		IDCitizen:       record.IDCitizen,
		Authenticated:   record.AuthSuccess,
		Message:         message,
		AuthenticatedAt: at.Format(time.RFC3339),
	}
}
