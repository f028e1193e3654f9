package dto

import (
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
)

// DispatchEventRequest is the request body for dispatching a domain event.
type DispatchEventRequest struct {
	OrganizationID string         `json:"organizationId" binding:"required,uuid"`
	Event          string         `json:"event" binding:"required,event_type"`
	Data           map[string]any `json:"data"`
}

// DispatchEventResponse reports the per-receiver outcomes of a dispatch.
type DispatchEventResponse struct {
	Event    string                  `json:"event"`
	Outcomes []ports.DeliveryOutcome `json:"outcomes"`
}

// DeliveryLogResponse is the API representation of one delivery log.
type DeliveryLogResponse struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Provider       string     `json:"provider"`
	Event          string     `json:"event"`
	WebhookURL     string     `json:"webhook_url"`
	Status         string     `json:"status"`
	HTTPStatus     *int       `json:"http_status,omitempty"`
	Attempt        int        `json:"attempt"`
	MaxAttempts    int        `json:"max_attempts"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	LastError      *string    `json:"last_error,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ListDeliveriesResponse is one page of delivery logs.
type ListDeliveriesResponse struct {
	Items    []DeliveryLogResponse `json:"items"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// SweepResponse reports one retry sweep invocation.
type SweepResponse struct {
	Scanned   int `json:"scanned"`
	Delivered int `json:"delivered"`
	Retrying  int `json:"retrying"`
	Exhausted int `json:"exhausted"`
	Skipped   int `json:"skipped"`
}

// PruneResponse reports retention housekeeping results.
type PruneResponse struct {
	Pruned int64 `json:"pruned"`
}

// ToDeliveryLogResponse maps a domain delivery log to its API shape. The
// payload is omitted: it may embed tenant data that listing callers have no
// need for.
func ToDeliveryLogResponse(l *domain.DeliveryLog) DeliveryLogResponse {
	return DeliveryLogResponse{
		ID:             l.ID.String(),
		OrganizationID: l.OrganizationID.String(),
		Provider:       string(l.Provider),
		Event:          string(l.Event),
		WebhookURL:     l.WebhookURL,
		Status:         string(l.Status),
		HTTPStatus:     l.HTTPStatus,
		Attempt:        l.Attempt,
		MaxAttempts:    l.MaxAttempts,
		NextRetryAt:    l.NextRetryAt,
		LastError:      l.LastError,
		DeliveredAt:    l.DeliveredAt,
		CreatedAt:      l.CreatedAt,
	}
}
