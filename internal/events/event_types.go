package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTokenIssued            EventType = "token_issued"
	EventTokenRevoked           EventType = "token_revoked"
	EventAuthenticationRejected EventType = "authentication_rejected"
)

// Event represents an auth lifecycle event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TokenIssuedPayload payload.
type TokenIssuedPayload struct {
	Role string `json:"role"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	Reason string `json:"reason"`
}

// AuthenticationRejectedPayload payload.
type AuthenticationRejectedPayload struct {
	Reason string `json:"reason"`
}
