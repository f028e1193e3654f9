package ports

import (
	"context"
	"time"

	"webhook-dispatch-service/internal/core/domain"

	"github.com/google/uuid"
)

// DeliveryLogRepository defines persistence for webhook delivery logs.
// Update is an atomic read-modify-write keyed by log id: last writer wins
// per row, no cross-row locking.
type DeliveryLogRepository interface {
	Create(ctx context.Context, log *domain.DeliveryLog) error
	Update(ctx context.Context, log *domain.DeliveryLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryLog, error)
	List(ctx context.Context, params DeliveryListParams) ([]domain.DeliveryLog, int64, error)
	// ListDueForRetry returns logs in RETRYING state whose next_retry_at has
	// elapsed, capped per organization to bound sweep latency.
	ListDueForRetry(ctx context.Context, now time.Time, perOrgLimit int) ([]domain.DeliveryLog, error)
	// DeleteOlderThan removes at most batchSize logs created before cutoff
	// and returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

// DeliveryListParams holds filter + pagination for listing delivery logs.
type DeliveryListParams struct {
	OrganizationID uuid.UUID
	Status         *domain.DeliveryStatus
	Event          *domain.EventType
	Page           int
	PageSize       int
}

// IntegrationRegistry is the narrow view of the externally owned integration
// configuration store. The dispatcher never creates or deletes integrations.
type IntegrationRegistry interface {
	// GetIntegration returns the integration or nil when none exists. The
	// signing secret is not populated.
	GetIntegration(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.Integration, error)
	// GetIntegrationWithSecret additionally decrypts the signing secret.
	// Callers must treat the secret as transient and never persist it.
	GetIntegrationWithSecret(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.Integration, error)
	UpdateSyncStatus(ctx context.Context, orgID uuid.UUID, provider domain.Provider, status domain.SyncStatus, errMsg *string) error
}
