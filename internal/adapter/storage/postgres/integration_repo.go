package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IntegrationRepo implements ports.IntegrationRegistry over the integrations
// table owned by the main application. This service reads configuration and
// writes sync status; it never creates or deletes integrations.
type IntegrationRepo struct {
	pool   Pool
	crypto ports.EncryptionService
}

// NewIntegrationRepo creates a new IntegrationRepo.
func NewIntegrationRepo(pool Pool, crypto ports.EncryptionService) *IntegrationRepo {
	return &IntegrationRepo{pool: pool, crypto: crypto}
}

// GetIntegration fetches one tenant's integration for a provider. Returns
// nil when none is configured. The signing secret stays encrypted.
func (r *IntegrationRepo) GetIntegration(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.Integration, error) {
	query := `SELECT organization_id, provider, status, webhook_url, secret_enc,
			subscribed_events, retry_on_failure, last_sync_status, last_sync_error,
			last_sync_at, created_at, updated_at
		FROM integrations
		WHERE organization_id = $1 AND provider = $2`

	i := &domain.Integration{}
	var providerStr, status string
	var events []string
	var syncStatus *string
	err := r.pool.QueryRow(ctx, query, orgID, string(provider)).Scan(
		&i.OrganizationID, &providerStr, &status, &i.WebhookURL, &i.SecretEnc,
		&events, &i.RetryOnFailure, &syncStatus, &i.LastSyncError,
		&i.LastSyncAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get integration: %w", err)
	}

	i.Provider = domain.Provider(providerStr)
	i.Status = domain.IntegrationStatus(status)
	i.SubscribedEvents = make([]domain.EventType, 0, len(events))
	for _, e := range events {
		i.SubscribedEvents = append(i.SubscribedEvents, domain.EventType(e))
	}
	if syncStatus != nil {
		s := domain.SyncStatus(*syncStatus)
		i.LastSyncStatus = &s
	}
	return i, nil
}

// GetIntegrationWithSecret fetches the integration and decrypts its signing
// secret for immediate use.
func (r *IntegrationRepo) GetIntegrationWithSecret(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.Integration, error) {
	i, err := r.GetIntegration(ctx, orgID, provider)
	if err != nil || i == nil {
		return i, err
	}

	secret, err := r.crypto.Decrypt(i.SecretEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt integration secret: %w", err)
	}
	i.Secret = secret
	return i, nil
}

// UpdateSyncStatus records the outcome of the most recent delivery attempt.
func (r *IntegrationRepo) UpdateSyncStatus(ctx context.Context, orgID uuid.UUID, provider domain.Provider, status domain.SyncStatus, errMsg *string) error {
	now := time.Now().UTC()
	query := `UPDATE integrations
		SET last_sync_status = $1, last_sync_error = $2, last_sync_at = $3, updated_at = $4
		WHERE organization_id = $5 AND provider = $6`

	_, err := r.pool.Exec(ctx, query, string(status), errMsg, now, now, orgID, string(provider))
	if err != nil {
		return fmt.Errorf("update integration sync status: %w", err)
	}
	return nil
}
