package service

import (
	"context"
	"fmt"
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/internal/metrics"
	"webhook-dispatch-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// retryService implements ports.RetryService.
type retryService struct {
	logs       ports.DeliveryLogRepository
	dispatcher ports.DispatcherService
	lock       ports.SweepLock
	perOrg     int
	lockTTL    time.Duration
	retention  time.Duration
	pruneBatch int
	log        zerolog.Logger
}

// NewRetryService creates the retry sweep and retention housekeeping service.
func NewRetryService(
	logs ports.DeliveryLogRepository,
	dispatcher ports.DispatcherService,
	lock ports.SweepLock,
	perOrg int,
	lockTTL time.Duration,
	retention time.Duration,
	pruneBatch int,
	log zerolog.Logger,
) ports.RetryService {
	return &retryService{
		logs:       logs,
		dispatcher: dispatcher,
		lock:       lock,
		perOrg:     perOrg,
		lockTTL:    lockTTL,
		retention:  retention,
		pruneBatch: pruneBatch,
		log:        log,
	}
}

// ProcessRetries advances every delivery log whose retry is due, capped per
// organization so one noisy tenant cannot monopolize a sweep. The sweep lease
// is best effort: if Redis is unavailable the sweep proceeds unguarded, since
// redelivery is idempotent from the receiver's point of view (same envelope
// id) and at-least-once is the contract.
func (s *retryService) ProcessRetries(ctx context.Context) (ports.SweepStats, error) {
	metrics.SweepRuns.Inc()

	token, acquired, err := s.lock.Acquire(ctx, s.lockTTL)
	if err != nil {
		s.log.Warn().Err(err).Msg("retry sweep: lease unavailable, proceeding without it")
	} else if !acquired {
		s.log.Debug().Msg("retry sweep: lease held elsewhere, skipping")
		return ports.SweepStats{}, apperror.ErrSweepInProgress()
	} else {
		defer func() {
			if rerr := s.lock.Release(context.WithoutCancel(ctx), token); rerr != nil {
				s.log.Warn().Err(rerr).Msg("retry sweep: failed to release lease")
			}
		}()
	}

	due, err := s.logs.ListDueForRetry(ctx, time.Now().UTC(), s.perOrg)
	if err != nil {
		return ports.SweepStats{}, fmt.Errorf("listing due retries: %w", err)
	}

	var stats ports.SweepStats
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		stats.Scanned++
		outcome := s.dispatcher.RedeliverLog(ctx, &due[i])

		var result string
		switch {
		case outcome.Status == ports.OutcomeDelivered:
			stats.Delivered++
			result = "delivered"
		case outcome.Status == ports.OutcomeSkipped:
			stats.Skipped++
			result = "skipped"
		case due[i].Status == domain.DeliveryStatusRetrying:
			stats.Retrying++
			result = "retrying"
		default:
			stats.Exhausted++
			result = "exhausted"
		}
		metrics.SweepProcessed.WithLabelValues(result).Inc()
	}

	s.log.Info().
		Int("scanned", stats.Scanned).
		Int("delivered", stats.Delivered).
		Int("retrying", stats.Retrying).
		Int("exhausted", stats.Exhausted).
		Int("skipped", stats.Skipped).
		Msg("retry sweep: completed")
	return stats, nil
}

// PruneDeliveryLogs deletes delivery logs older than the retention window in
// batches, so a long backlog never holds one large delete transaction open.
func (s *retryService) PruneDeliveryLogs(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	var total int64
	for {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := s.logs.DeleteOlderThan(ctx, cutoff, s.pruneBatch)
		if err != nil {
			return total, fmt.Errorf("pruning delivery logs: %w", err)
		}
		total += n
		metrics.LogsPruned.Add(float64(n))
		if n < int64(s.pruneBatch) {
			break
		}
	}

	if total > 0 {
		s.log.Info().Int64("pruned", total).Time("cutoff", cutoff).Msg("delivery log retention: pruned old rows")
	}
	return total, nil
}
