package service

import (
	"encoding/json"
	"fmt"
	"time"

	"webhook-dispatch-service/internal/core/domain"

	"github.com/google/uuid"
)

// PayloadService implements ports.PayloadBuilder. It produces the canonical,
// versioned envelope posted to receivers. Envelopes are immutable once built;
// retries resend the same envelope with a freshly computed signature.
type PayloadService struct{}

// NewPayloadService creates a new payload builder.
func NewPayloadService() *PayloadService {
	return &PayloadService{}
}

// BuildEnvelope constructs an unsigned envelope with a fresh unique id and
// current UTC timestamp. The id is the receiver-side idempotency key.
func (s *PayloadService) BuildEnvelope(orgID uuid.UUID, event domain.EventType, data map[string]any) (*domain.WebhookEnvelope, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("unknown event type %q", event)
	}
	if data == nil {
		data = map[string]any{}
	}
	return &domain.WebhookEnvelope{
		ID:             uuid.New(),
		Event:          event,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		OrganizationID: orgID,
		Data:           data,
	}, nil
}

// CanonicalBytes returns the deterministic serialization the signature is
// computed over: the envelope JSON with the signature field excluded.
// Struct field order is fixed and encoding/json sorts map keys, so the same
// logical payload always serializes identically.
func (s *PayloadService) CanonicalBytes(env *domain.WebhookEnvelope) ([]byte, error) {
	unsigned := *env
	unsigned.Signature = ""
	b, err := json.Marshal(&unsigned)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}
	return b, nil
}
