package ports

import (
	"context"
	"time"

	"webhook-dispatch-service/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles integration secret encryption at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService computes the message authentication code carried in the
// envelope and the X-Webhook-Signature header.
type SignatureService interface {
	Sign(secret string, payload string) string
	Verify(secret string, payload string, signature string) bool
}

// PayloadBuilder constructs canonical webhook envelopes.
type PayloadBuilder interface {
	// BuildEnvelope creates a fresh unsigned envelope with a unique id and
	// current timestamp. Pure aside from id/clock reads.
	BuildEnvelope(orgID uuid.UUID, event domain.EventType, data map[string]any) (*domain.WebhookEnvelope, error)
	// CanonicalBytes returns the deterministic serialization the signature
	// is computed over: the envelope JSON without the signature field.
	CanonicalBytes(env *domain.WebhookEnvelope) ([]byte, error)
}

// OutcomeStatus tags the per-receiver result of a dispatch.
type OutcomeStatus string

const (
	OutcomeDelivered OutcomeStatus = "delivered"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// DeliveryOutcome is the per-receiver result of a dispatch or redelivery.
type DeliveryOutcome struct {
	Provider   domain.Provider `json:"provider"`
	Status     OutcomeStatus   `json:"status"`
	LogID      uuid.UUID       `json:"log_id,omitempty"`
	HTTPStatus int             `json:"http_status,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// DispatcherService orchestrates outbound webhook delivery.
type DispatcherService interface {
	// DispatchEvent delivers the event to every eligible receiver. It never
	// returns an error: per-receiver failures are recorded in the delivery
	// log and reflected in the outcomes.
	DispatchEvent(ctx context.Context, orgID uuid.UUID, event domain.EventType, data map[string]any) []DeliveryOutcome
	// RedeliverLog re-attempts a delivery log picked up by the retry sweep,
	// re-signing the stored envelope with the receiver's current secret.
	RedeliverLog(ctx context.Context, log *domain.DeliveryLog) DeliveryOutcome
}

// SweepStats summarises one retry sweep invocation.
type SweepStats struct {
	Scanned   int `json:"scanned"`
	Delivered int `json:"delivered"`
	Retrying  int `json:"retrying"`
	Exhausted int `json:"exhausted"`
	Skipped   int `json:"skipped"`
}

// RetryService advances delivery logs in RETRYING state and prunes old rows.
type RetryService interface {
	ProcessRetries(ctx context.Context) (SweepStats, error)
	PruneDeliveryLogs(ctx context.Context) (int64, error)
}

// SweepLock bounds duplicate retry sweeps across instances. Acquisition is
// best effort: correctness never depends on holding the lease.
type SweepLock interface {
	// Acquire takes the lease for ttl, returning a release token and whether
	// the lease was obtained.
	Acquire(ctx context.Context, ttl time.Duration) (token string, acquired bool, err error)
	// Release gives up the lease if the token still owns it.
	Release(ctx context.Context, token string) error
}

// TokenService issues and validates the JWT service tokens guarding the
// internal API.
type TokenService interface {
	Generate(service string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed service token claims.
type TokenClaims struct {
	Service string
}
