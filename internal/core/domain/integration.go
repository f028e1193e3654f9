package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies an automation platform a tenant can connect.
type Provider string

const (
	ProviderZapier Provider = "zapier"
	ProviderMake   Provider = "make"
)

// IntegrationStatus represents the connection state of an integration.
type IntegrationStatus string

const (
	IntegrationConnected    IntegrationStatus = "connected"
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationError        IntegrationStatus = "error"
)

// SyncStatus records the outcome of the most recent delivery to a receiver.
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// Integration is one tenant's connection to one provider. The dispatcher
// only reads integrations and updates their sync status; connection
// management lives elsewhere.
type Integration struct {
	OrganizationID   uuid.UUID         `json:"organization_id"`
	Provider         Provider          `json:"provider"`
	Status           IntegrationStatus `json:"status"`
	WebhookURL       string            `json:"webhook_url"`
	SecretEnc        string            `json:"-"` // encrypted at rest
	Secret           string            `json:"-"` // populated only via GetIntegrationWithSecret
	SubscribedEvents []EventType       `json:"subscribed_events"`
	RetryOnFailure   bool              `json:"retry_on_failure"`
	LastSyncStatus   *SyncStatus       `json:"last_sync_status"`
	LastSyncError    *string           `json:"last_sync_error"`
	LastSyncAt       *time.Time        `json:"last_sync_at"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// SubscribedTo reports whether the integration subscribes to the event type.
func (i *Integration) SubscribedTo(event EventType) bool {
	for _, e := range i.SubscribedEvents {
		if e == event {
			return true
		}
	}
	return false
}

// Eligible reports whether the integration should receive the event:
// connected, has a webhook URL, and subscribes to the event type.
func (i *Integration) Eligible(event EventType) bool {
	return i.Status == IntegrationConnected && i.WebhookURL != "" && i.SubscribedTo(event)
}
