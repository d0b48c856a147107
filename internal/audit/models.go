package audit

import "time"

// EventType names the auditable facts the engine emits.
type EventType string

const (
	EventCodeIssued    EventType = "authorization_code.issued"
	EventCodeRedeemed  EventType = "authorization_code.redeemed"
	EventTokenIssued   EventType = "token.issued"
	EventTokenRefresh  EventType = "token.refreshed"
	EventGrantRejected EventType = "grant.rejected"
	EventLoginRequired EventType = "authorize.login_required"
)

// Event is a structured audit record. Detail never carries token material,
// only identifiers and outcome metadata.
type Event struct {
	Type      EventType         `json:"type"`
	ClientID  string            `json:"client_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Detail    map[string]string `json:"detail,omitempty"`
}
