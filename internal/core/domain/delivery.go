package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus represents the delivery state of a webhook.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusRetrying  DeliveryStatus = "RETRYING"
	DeliveryStatusFailed    DeliveryStatus = "FAILED"
)

// DeliveryLog records the lifecycle of one (tenant, receiver, event)
// delivery: the initial attempt plus all retries.
type DeliveryLog struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	Provider       Provider       `json:"provider"`
	Event          EventType      `json:"event"`
	WebhookURL     string         `json:"webhook_url"`
	Payload        string         `json:"payload"` // signed envelope JSON
	Status         DeliveryStatus `json:"status"`
	HTTPStatus     *int           `json:"http_status"`
	LastError      *string        `json:"last_error"`
	Attempt        int            `json:"attempt"`
	MaxAttempts    int            `json:"max_attempts"`
	NextRetryAt    *time.Time     `json:"next_retry_at"`
	DeliveredAt    *time.Time     `json:"delivered_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AttemptsExhausted reports whether the log has used up its attempt budget.
func (l *DeliveryLog) AttemptsExhausted() bool {
	return l.Attempt >= l.MaxAttempts
}

// Terminal reports whether the log is in a final state.
func (l *DeliveryLog) Terminal() bool {
	return l.Status == DeliveryStatusDelivered || l.Status == DeliveryStatusFailed
}
