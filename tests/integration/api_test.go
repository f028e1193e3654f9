package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpHandler "webhook-dispatch-service/internal/adapter/http/handler"
	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backoff = []time.Duration{5 * time.Second, 30 * time.Second, 120 * time.Second}

type testEnv struct {
	registry   *inMemoryIntegrationRegistry
	logs       *inMemoryDeliveryLogRepo
	dispatcher ports.DispatcherService
	retrySvc   ports.RetryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	registry := newInMemoryIntegrationRegistry()
	logs := newInMemoryDeliveryLogRepo()
	dispatcher := service.NewDispatchService(
		registry, logs,
		service.NewPayloadService(), service.NewHMACSignatureService(),
		&http.Client{Timeout: 2 * time.Second},
		[]domain.Provider{domain.ProviderZapier, domain.ProviderMake},
		backoff, 2*time.Second, zerolog.Nop(),
	)
	retrySvc := service.NewRetryService(logs, dispatcher, stubSweepLock{}, 50, time.Minute, 720*time.Hour, 500, zerolog.Nop())
	return &testEnv{registry: registry, logs: logs, dispatcher: dispatcher, retrySvc: retrySvc}
}

func (e *testEnv) addIntegration(provider domain.Provider, orgID uuid.UUID, url, secret string, events ...domain.EventType) {
	e.registry.put(&domain.Integration{
		OrganizationID:   orgID,
		Provider:         provider,
		Status:           domain.IntegrationConnected,
		WebhookURL:       url,
		Secret:           secret,
		SubscribedEvents: events,
		RetryOnFailure:   true,
	})
}

// makeRetryDue rewinds next_retry_at so the sweep picks the row up now.
func (e *testEnv) makeRetryDue(t *testing.T, logID uuid.UUID) {
	t.Helper()
	l, err := e.logs.GetByID(context.Background(), logID)
	require.NoError(t, err)
	require.NotNil(t, l)
	past := time.Now().UTC().Add(-time.Second)
	l.NextRetryAt = &past
	require.NoError(t, e.logs.Update(context.Background(), l))
}

type capturedRequest struct {
	header http.Header
	body   []byte
}

func TestDispatch_EndToEnd_SignedDelivery(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()
	secret := "whsec_integration"

	captured := make(chan capturedRequest, 1)
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured <- capturedRequest{header: r.Header.Clone(), body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()

	env.addIntegration(domain.ProviderZapier, orgID, receiver.URL, secret, domain.EventPaymentReceived)

	outcomes := env.dispatcher.DispatchEvent(context.Background(), orgID, domain.EventPaymentReceived,
		map[string]any{"amount": 500.0, "currency": "usd"})

	require.Len(t, outcomes, 2)
	assert.Equal(t, ports.OutcomeDelivered, outcomes[0].Status)
	assert.Equal(t, ports.OutcomeSkipped, outcomes[1].Status, "make is not configured")

	req := <-captured
	assert.Equal(t, "payment.received", req.header.Get("X-Webhook-Event"))
	assert.NotEmpty(t, req.header.Get("X-Webhook-Id"))
	assert.NotEmpty(t, req.header.Get("X-Webhook-Timestamp"))
	assert.Empty(t, req.header.Get("X-Webhook-Retry"))

	// The receiver-side verification: strip the signature, re-canonicalize,
	// recompute HMAC with the shared secret.
	var env2 domain.WebhookEnvelope
	require.NoError(t, json.Unmarshal(req.body, &env2))
	assert.Equal(t, orgID, env2.OrganizationID)
	sig := env2.Signature
	require.Equal(t, sig, req.header.Get("X-Webhook-Signature"))
	env2.Signature = ""
	canonical, err := service.NewPayloadService().CanonicalBytes(&env2)
	require.NoError(t, err)
	assert.True(t, service.NewHMACSignatureService().Verify(secret, string(canonical), sig))

	// Delivery log reflects success.
	l, err := env.logs.GetByID(context.Background(), outcomes[0].LogID)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, domain.DeliveryStatusDelivered, l.Status)
	assert.NotNil(t, l.DeliveredAt)
}

func TestDispatch_RetryUntilReceiverRecovers(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()

	var calls atomic.Int32
	var retryHeader atomic.Value
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		retryHeader.Store(r.Header.Get("X-Webhook-Retry"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer receiver.Close()

	env.addIntegration(domain.ProviderZapier, orgID, receiver.URL, "whsec_retry", domain.EventGoalAchieved)

	outcomes := env.dispatcher.DispatchEvent(context.Background(), orgID, domain.EventGoalAchieved, map[string]any{"goalId": "g-1"})
	logID := outcomes[0].LogID
	require.Equal(t, ports.OutcomeFailed, outcomes[0].Status)

	// First sweep: still failing.
	env.makeRetryDue(t, logID)
	stats, err := env.retrySvc.ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 1, stats.Retrying)

	// Second sweep: receiver recovered.
	env.makeRetryDue(t, logID)
	stats, err = env.retrySvc.ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Delivered)

	l, err := env.logs.GetByID(context.Background(), logID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusDelivered, l.Status)
	assert.Equal(t, 3, l.Attempt)
	assert.Equal(t, "3", retryHeader.Load(), "redelivery carries the retry header")

	// Nothing left for the next sweep.
	stats, err = env.retrySvc.ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Scanned)
}

func TestDispatch_ExhaustsAttemptBudget(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()

	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer receiver.Close()

	env.addIntegration(domain.ProviderZapier, orgID, receiver.URL, "whsec_dead", domain.EventCheckinCompleted)

	outcomes := env.dispatcher.DispatchEvent(context.Background(), orgID, domain.EventCheckinCompleted, nil)
	logID := outcomes[0].LogID

	// Burn through every retry.
	for i := 0; i < len(backoff); i++ {
		env.makeRetryDue(t, logID)
		_, err := env.retrySvc.ProcessRetries(context.Background())
		require.NoError(t, err)
	}

	l, err := env.logs.GetByID(context.Background(), logID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusFailed, l.Status)
	assert.Equal(t, l.MaxAttempts, l.Attempt)
	assert.Nil(t, l.NextRetryAt)
	require.NotNil(t, l.LastError)

	// Terminal rows stay terminal.
	stats, err := env.retrySvc.ProcessRetries(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Scanned)
}

func TestDispatch_TwoProvidersGetDistinctEnvelopes(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()

	ids := make(chan string, 2)
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Webhook-Id")
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()

	env.addIntegration(domain.ProviderZapier, orgID, receiver.URL, "whsec_z", domain.EventGoalAchieved)
	env.addIntegration(domain.ProviderMake, orgID, receiver.URL, "whsec_m", domain.EventGoalAchieved)

	outcomes := env.dispatcher.DispatchEvent(context.Background(), orgID, domain.EventGoalAchieved, map[string]any{"goalId": "g-7"})
	require.Len(t, outcomes, 2)
	assert.Equal(t, ports.OutcomeDelivered, outcomes[0].Status)
	assert.Equal(t, ports.OutcomeDelivered, outcomes[1].Status)
	assert.NotEqual(t, outcomes[0].LogID, outcomes[1].LogID)
	assert.NotEqual(t, <-ids, <-ids, "each receiver gets its own envelope id")
}

func TestAPI_DispatchAndInspect(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()

	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()
	env.addIntegration(domain.ProviderZapier, orgID, receiver.URL, "whsec_api", domain.EventProgramPurchased)

	tokenSvc := service.NewJWTTokenService("integration-test-secret", time.Hour, "webhook-dispatch-service")
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Dispatcher:   env.dispatcher,
		RetrySvc:     env.retrySvc,
		DeliveryLogs: env.logs,
		TokenSvc:     tokenSvc,
		Logger:       zerolog.Nop(),
	})

	token, _, err := tokenSvc.Generate("main-app")
	require.NoError(t, err)

	// Unauthenticated requests are rejected.
	anon := httptest.NewRecorder()
	router.ServeHTTP(anon, httptest.NewRequest(http.MethodPost, "/internal/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	// Dispatch through the API.
	body, _ := json.Marshal(map[string]any{
		"organizationId": orgID.String(),
		"event":          "program.purchased",
		"data":           map[string]any{"programId": "p-1", "amount": 99.0},
	})
	req := httptest.NewRequest(http.MethodPost, "/internal/v1/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// The delivery shows up on the listing API.
	listReq := httptest.NewRequest(http.MethodGet, "/internal/v1/organizations/"+orgID.String()+"/deliveries", nil)
	listReq.Header.Set("Authorization", "Bearer "+token)
	lw := httptest.NewRecorder()
	router.ServeHTTP(lw, listReq)
	require.Equal(t, http.StatusOK, lw.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
	item := data["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "DELIVERED", item["status"])
	assert.Equal(t, "program.purchased", item["event"])
}

func TestAPI_SweepEndpoint(t *testing.T) {
	env := newTestEnv(t)
	orgID := uuid.New()

	var calls atomic.Int32
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()
	env.addIntegration(domain.ProviderZapier, orgID, receiver.URL, "whsec_sweep", domain.EventSquadMemberJoined)

	outcomes := env.dispatcher.DispatchEvent(context.Background(), orgID, domain.EventSquadMemberJoined, nil)
	env.makeRetryDue(t, outcomes[0].LogID)

	tokenSvc := service.NewJWTTokenService("integration-test-secret", time.Hour, "webhook-dispatch-service")
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Dispatcher:   env.dispatcher,
		RetrySvc:     env.retrySvc,
		DeliveryLogs: env.logs,
		TokenSvc:     tokenSvc,
		Logger:       zerolog.Nop(),
	})
	token, _, err := tokenSvc.Generate("cron")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/retries/sweep", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(1), data["scanned"])
	assert.Equal(t, float64(1), data["delivered"])
}
