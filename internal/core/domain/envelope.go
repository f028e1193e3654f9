package domain

import (
	"github.com/google/uuid"
)

// WebhookEnvelope is the versioned wire structure posted to receivers.
// The id doubles as the receiver-side idempotency key. Field order is
// fixed; the signature covers the JSON serialization of everything
// except the signature field itself.
type WebhookEnvelope struct {
	ID             uuid.UUID      `json:"id"`
	Event          EventType      `json:"event"`
	Timestamp      string         `json:"timestamp"` // ISO-8601 (RFC3339), UTC
	OrganizationID uuid.UUID      `json:"organizationId"`
	Data           map[string]any `json:"data"`
	Signature      string         `json:"signature,omitempty"`
}
