package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Webhook header names (wire contract). The signature is computed over the
// envelope JSON excluding the signature field; receivers recompute and compare.
const (
	HeaderWebhookEvent     = "X-Webhook-Event"
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookTimestamp = "X-Webhook-Timestamp"
	HeaderWebhookID        = "X-Webhook-Id"
	HeaderWebhookRetry     = "X-Webhook-Retry"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// dispatchService implements ports.DispatcherService.
type dispatchService struct {
	registry   ports.IntegrationRegistry
	logs       ports.DeliveryLogRepository
	builder    ports.PayloadBuilder
	signer     ports.SignatureService
	httpClient HTTPClient
	providers  []domain.Provider
	backoff    []time.Duration
	timeout    time.Duration
	log        zerolog.Logger
}

// NewDispatchService creates a new webhook dispatcher. The provider list is
// injected so adding a receiver platform never touches the dispatch loop.
func NewDispatchService(
	registry ports.IntegrationRegistry,
	logs ports.DeliveryLogRepository,
	builder ports.PayloadBuilder,
	signer ports.SignatureService,
	httpClient HTTPClient,
	providers []domain.Provider,
	backoff []time.Duration,
	timeout time.Duration,
	log zerolog.Logger,
) ports.DispatcherService {
	return &dispatchService{
		registry:   registry,
		logs:       logs,
		builder:    builder,
		signer:     signer,
		httpClient: httpClient,
		providers:  providers,
		backoff:    backoff,
		timeout:    timeout,
		log:        log,
	}
}

// DispatchEvent delivers one event to every eligible receiver of the tenant.
// It never returns an error: the triggering business operation must not be
// blocked or rolled back by a notification failure. Receivers are independent
// failure domains; one failing lookup or delivery never prevents the rest.
func (s *dispatchService) DispatchEvent(ctx context.Context, orgID uuid.UUID, event domain.EventType, data map[string]any) []ports.DeliveryOutcome {
	outcomes := make([]ports.DeliveryOutcome, 0, len(s.providers))
	for _, provider := range s.providers {
		outcomes = append(outcomes, s.dispatchToProvider(ctx, provider, orgID, event, data))
	}
	return outcomes
}

func (s *dispatchService) dispatchToProvider(ctx context.Context, provider domain.Provider, orgID uuid.UUID, event domain.EventType, data map[string]any) ports.DeliveryOutcome {
	integ, err := s.registry.GetIntegrationWithSecret(ctx, orgID, provider)
	if err != nil {
		s.log.Error().Err(err).Str("org_id", orgID.String()).Str("provider", string(provider)).Msg("webhook: integration lookup failed")
		return skipped(provider, "integration lookup failed")
	}
	if integ == nil || !integ.Eligible(event) {
		s.log.Debug().Str("org_id", orgID.String()).Str("provider", string(provider)).Str("event", string(event)).Msg("webhook: receiver not eligible, skipping")
		return skipped(provider, "not connected or not subscribed")
	}

	now := time.Now().UTC()
	dlog := &domain.DeliveryLog{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Provider:       provider,
		Event:          event,
		WebhookURL:     integ.WebhookURL,
		Status:         domain.DeliveryStatusPending,
		Attempt:        1,
		MaxAttempts:    1 + len(s.backoff),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	env, err := s.builder.BuildEnvelope(orgID, event, data)
	if err != nil {
		return s.recordBuildFailure(ctx, dlog, fmt.Sprintf("signing: %v", err))
	}
	canonical, err := s.builder.CanonicalBytes(env)
	if err != nil {
		return s.recordBuildFailure(ctx, dlog, fmt.Sprintf("signing: %v", err))
	}
	env.Signature = s.signer.Sign(integ.Secret, string(canonical))

	body, err := json.Marshal(env)
	if err != nil {
		return s.recordBuildFailure(ctx, dlog, fmt.Sprintf("signing: %v", err))
	}
	dlog.Payload = string(body)

	if err := s.logs.Create(ctx, dlog); err != nil {
		s.log.Error().Err(err).Str("org_id", orgID.String()).Str("provider", string(provider)).Msg("webhook: failed to create delivery log")
		return ports.DeliveryOutcome{Provider: provider, Status: ports.OutcomeFailed, Reason: "delivery log create failed"}
	}

	started := time.Now()
	httpStatus, attemptErr := s.post(ctx, dlog, env, body)
	return s.finishAttempt(ctx, integ, dlog, httpStatus, attemptErr, started)
}

// RedeliverLog re-attempts a delivery picked up by the retry sweep. The
// stored envelope is resent unchanged except for a signature recomputed with
// the receiver's current secret: a rotated secret means the old signature
// would never verify, so signing with the current one is intentional.
func (s *dispatchService) RedeliverLog(ctx context.Context, dlog *domain.DeliveryLog) ports.DeliveryOutcome {
	integ, err := s.registry.GetIntegrationWithSecret(ctx, dlog.OrganizationID, dlog.Provider)
	if err != nil {
		// Transient registry failure: leave the row for the next sweep.
		s.log.Error().Err(err).Str("log_id", dlog.ID.String()).Msg("webhook: integration lookup failed during retry")
		return ports.DeliveryOutcome{Provider: dlog.Provider, Status: ports.OutcomeSkipped, LogID: dlog.ID, Reason: "integration lookup failed"}
	}
	if integ == nil || integ.Status != domain.IntegrationConnected || integ.WebhookURL == "" {
		return s.failTerminally(ctx, dlog, "integration no longer available")
	}
	if dlog.AttemptsExhausted() {
		return s.failTerminally(ctx, dlog, "attempt budget exhausted")
	}

	var env domain.WebhookEnvelope
	if err := json.Unmarshal([]byte(dlog.Payload), &env); err != nil {
		return s.failTerminally(ctx, dlog, fmt.Sprintf("invalid stored payload: %v", err))
	}
	env.Signature = ""
	canonical, err := s.builder.CanonicalBytes(&env)
	if err != nil {
		return s.failTerminally(ctx, dlog, fmt.Sprintf("signing: %v", err))
	}
	env.Signature = s.signer.Sign(integ.Secret, string(canonical))

	body, err := json.Marshal(&env)
	if err != nil {
		return s.failTerminally(ctx, dlog, fmt.Sprintf("signing: %v", err))
	}

	dlog.Attempt++
	dlog.WebhookURL = integ.WebhookURL
	dlog.Payload = string(body)

	started := time.Now()
	httpStatus, attemptErr := s.post(ctx, dlog, &env, body)
	return s.finishAttempt(ctx, integ, dlog, httpStatus, attemptErr, started)
}

// post performs one HTTP delivery attempt with a hard per-attempt timeout.
// A response of any status counts as "received a response" (nil error);
// timeouts and transport errors surface as a non-nil error.
func (s *dispatchService) post(ctx context.Context, dlog *domain.DeliveryLog, env *domain.WebhookEnvelope, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dlog.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderWebhookEvent, string(env.Event))
	req.Header.Set(HeaderWebhookSignature, env.Signature)
	req.Header.Set(HeaderWebhookTimestamp, env.Timestamp)
	req.Header.Set(HeaderWebhookID, env.ID.String())
	if dlog.Attempt > 1 {
		req.Header.Set(HeaderWebhookRetry, strconv.Itoa(dlog.Attempt))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// finishAttempt applies the state transition for one completed attempt and
// records it: delivery log update, integration sync status, metrics.
func (s *dispatchService) finishAttempt(ctx context.Context, integ *domain.Integration, dlog *domain.DeliveryLog, httpStatus int, attemptErr error, started time.Time) ports.DeliveryOutcome {
	now := time.Now().UTC()
	if httpStatus > 0 {
		status := httpStatus
		dlog.HTTPStatus = &status
	}

	if attemptErr == nil && httpStatus >= 200 && httpStatus < 300 {
		dlog.Status = domain.DeliveryStatusDelivered
		dlog.DeliveredAt = &now
		dlog.NextRetryAt = nil
		dlog.UpdatedAt = now
		s.updateLog(ctx, dlog)
		s.updateSyncStatus(ctx, dlog, domain.SyncStatusSuccess, nil)
		s.observe(dlog, "delivered", started)
		s.log.Info().Str("log_id", dlog.ID.String()).Str("provider", string(dlog.Provider)).Str("event", string(dlog.Event)).Int("attempt", dlog.Attempt).Int("status", httpStatus).Msg("webhook: delivered")
		return ports.DeliveryOutcome{Provider: dlog.Provider, Status: ports.OutcomeDelivered, LogID: dlog.ID, HTTPStatus: httpStatus}
	}

	msg := failureMessage(httpStatus, attemptErr)
	dlog.LastError = &msg
	dlog.UpdatedAt = now

	outcome := "failed"
	if integ.RetryOnFailure && dlog.Attempt < dlog.MaxAttempts {
		dlog.Status = domain.DeliveryStatusRetrying
		next := now.Add(s.backoffFor(dlog.Attempt))
		dlog.NextRetryAt = &next
		outcome = "retrying"
	} else {
		dlog.Status = domain.DeliveryStatusFailed
		dlog.NextRetryAt = nil
	}

	s.updateLog(ctx, dlog)
	s.updateSyncStatus(ctx, dlog, domain.SyncStatusError, &msg)
	s.observe(dlog, outcome, started)
	s.log.Warn().Str("log_id", dlog.ID.String()).Str("provider", string(dlog.Provider)).Str("event", string(dlog.Event)).Int("attempt", dlog.Attempt).Str("status", string(dlog.Status)).Str("error", msg).Msg("webhook: delivery failed")
	return ports.DeliveryOutcome{Provider: dlog.Provider, Status: ports.OutcomeFailed, LogID: dlog.ID, HTTPStatus: httpStatus, Reason: msg}
}

// recordBuildFailure persists a terminal FAILED log for an envelope that
// could not be built or signed. Such attempts are never retried: the same
// input would fail the same way.
func (s *dispatchService) recordBuildFailure(ctx context.Context, dlog *domain.DeliveryLog, msg string) ports.DeliveryOutcome {
	dlog.Status = domain.DeliveryStatusFailed
	dlog.LastError = &msg
	if err := s.logs.Create(ctx, dlog); err != nil {
		s.log.Error().Err(err).Str("org_id", dlog.OrganizationID.String()).Msg("webhook: failed to record build failure")
	}
	metrics.Deliveries.WithLabelValues(string(dlog.Provider), string(dlog.Event), "failed").Inc()
	s.log.Error().Str("provider", string(dlog.Provider)).Str("event", string(dlog.Event)).Str("error", msg).Msg("webhook: envelope build failed")
	return ports.DeliveryOutcome{Provider: dlog.Provider, Status: ports.OutcomeFailed, LogID: dlog.ID, Reason: msg}
}

func (s *dispatchService) failTerminally(ctx context.Context, dlog *domain.DeliveryLog, msg string) ports.DeliveryOutcome {
	now := time.Now().UTC()
	dlog.Status = domain.DeliveryStatusFailed
	dlog.LastError = &msg
	dlog.NextRetryAt = nil
	dlog.UpdatedAt = now
	s.updateLog(ctx, dlog)
	metrics.Deliveries.WithLabelValues(string(dlog.Provider), string(dlog.Event), "failed").Inc()
	s.log.Warn().Str("log_id", dlog.ID.String()).Str("error", msg).Msg("webhook: delivery marked failed")
	return ports.DeliveryOutcome{Provider: dlog.Provider, Status: ports.OutcomeFailed, LogID: dlog.ID, Reason: msg}
}

func (s *dispatchService) updateLog(ctx context.Context, dlog *domain.DeliveryLog) {
	if err := s.logs.Update(ctx, dlog); err != nil {
		s.log.Error().Err(err).Str("log_id", dlog.ID.String()).Msg("webhook: failed to update delivery log")
	}
}

func (s *dispatchService) updateSyncStatus(ctx context.Context, dlog *domain.DeliveryLog, status domain.SyncStatus, errMsg *string) {
	if err := s.registry.UpdateSyncStatus(ctx, dlog.OrganizationID, dlog.Provider, status, errMsg); err != nil {
		s.log.Warn().Err(err).Str("org_id", dlog.OrganizationID.String()).Str("provider", string(dlog.Provider)).Msg("webhook: failed to update sync status")
	}
}

func (s *dispatchService) observe(dlog *domain.DeliveryLog, outcome string, started time.Time) {
	metrics.Deliveries.WithLabelValues(string(dlog.Provider), string(dlog.Event), outcome).Inc()
	metrics.DeliveryDuration.WithLabelValues(string(dlog.Provider), outcome).Observe(time.Since(started).Seconds())
}

// backoffFor returns the delay before the retry following attempt number
// attempt. Beyond the table length the last entry repeats.
func (s *dispatchService) backoffFor(attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.backoff) {
		idx = len(s.backoff) - 1
	}
	return s.backoff[idx]
}

// failureMessage renders the persisted error string for a failed attempt.
// 4xx and 5xx are both retryable: a misconfigured receiver may be fixed later.
func failureMessage(httpStatus int, err error) string {
	if err == nil {
		return fmt.Sprintf("receiver rejected: HTTP %d", httpStatus)
	}
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return fmt.Sprintf("timeout: %v", err)
	}
	return fmt.Sprintf("network error: %v", err)
}

func skipped(provider domain.Provider, reason string) ports.DeliveryOutcome {
	return ports.DeliveryOutcome{Provider: provider, Status: ports.OutcomeSkipped, Reason: reason}
}
