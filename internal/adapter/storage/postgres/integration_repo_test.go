package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func integrationColumns() []string {
	return []string{"organization_id", "provider", "status", "webhook_url", "secret_enc",
		"subscribed_events", "retry_on_failure", "last_sync_status", "last_sync_error",
		"last_sync_at", "created_at", "updated_at"}
}

func integrationRow(orgID uuid.UUID) *pgxmock.Rows {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return pgxmock.NewRows(integrationColumns()).AddRow(
		orgID, string(domain.ProviderZapier), string(domain.IntegrationConnected),
		"https://hooks.zapier.com/hooks/catch/123", "encrypted_secret",
		[]string{"payment.received", "client.goal.achieved"}, true,
		(*string)(nil), (*string)(nil), (*time.Time)(nil), now, now,
	)
}

func TestIntegrationRepo_GetIntegration(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctrl := gomock.NewController(t)
	repo := NewIntegrationRepo(mock, mocks.NewMockEncryptionService(ctrl))
	orgID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM integrations").
		WithArgs(orgID, string(domain.ProviderZapier)).
		WillReturnRows(integrationRow(orgID))

	integ, err := repo.GetIntegration(context.Background(), orgID, domain.ProviderZapier)
	require.NoError(t, err)
	require.NotNil(t, integ)
	assert.Equal(t, domain.IntegrationConnected, integ.Status)
	assert.Equal(t, "encrypted_secret", integ.SecretEnc)
	assert.Empty(t, integ.Secret)
	assert.True(t, integ.SubscribedTo(domain.EventPaymentReceived))
	assert.False(t, integ.SubscribedTo(domain.EventCheckinCompleted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrationRepo_GetIntegration_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctrl := gomock.NewController(t)
	repo := NewIntegrationRepo(mock, mocks.NewMockEncryptionService(ctrl))

	mock.ExpectQuery("SELECT .+ FROM integrations").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(integrationColumns()))

	integ, err := repo.GetIntegration(context.Background(), uuid.New(), domain.ProviderMake)
	assert.NoError(t, err)
	assert.Nil(t, integ)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrationRepo_GetIntegrationWithSecret(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctrl := gomock.NewController(t)
	crypto := mocks.NewMockEncryptionService(ctrl)
	crypto.EXPECT().Decrypt("encrypted_secret").Return("whsec_plain", nil)

	repo := NewIntegrationRepo(mock, crypto)
	orgID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM integrations").
		WithArgs(orgID, string(domain.ProviderZapier)).
		WillReturnRows(integrationRow(orgID))

	integ, err := repo.GetIntegrationWithSecret(context.Background(), orgID, domain.ProviderZapier)
	require.NoError(t, err)
	require.NotNil(t, integ)
	assert.Equal(t, "whsec_plain", integ.Secret)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntegrationRepo_GetIntegrationWithSecret_DecryptError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctrl := gomock.NewController(t)
	crypto := mocks.NewMockEncryptionService(ctrl)
	crypto.EXPECT().Decrypt("encrypted_secret").Return("", errors.New("bad ciphertext"))

	repo := NewIntegrationRepo(mock, crypto)
	orgID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM integrations").
		WithArgs(orgID, string(domain.ProviderZapier)).
		WillReturnRows(integrationRow(orgID))

	integ, err := repo.GetIntegrationWithSecret(context.Background(), orgID, domain.ProviderZapier)
	assert.Error(t, err)
	assert.Nil(t, integ)
}

func TestIntegrationRepo_UpdateSyncStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctrl := gomock.NewController(t)
	repo := NewIntegrationRepo(mock, mocks.NewMockEncryptionService(ctrl))
	orgID := uuid.New()
	errMsg := "timeout: context deadline exceeded"

	mock.ExpectExec("UPDATE integrations").
		WithArgs(string(domain.SyncStatusError), &errMsg, pgxmock.AnyArg(), pgxmock.AnyArg(), orgID, string(domain.ProviderMake)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateSyncStatus(context.Background(), orgID, domain.ProviderMake, domain.SyncStatusError, &errMsg)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
