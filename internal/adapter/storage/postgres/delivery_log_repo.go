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

const deliveryLogColumns = `id, organization_id, provider, event_type, webhook_url, payload,
		status, http_status, attempt, max_attempts, next_retry_at, last_error,
		delivered_at, created_at, updated_at`

// DeliveryLogRepo implements ports.DeliveryLogRepository.
type DeliveryLogRepo struct {
	pool Pool
}

// NewDeliveryLogRepo creates a new DeliveryLogRepo.
func NewDeliveryLogRepo(pool Pool) *DeliveryLogRepo {
	return &DeliveryLogRepo{pool: pool}
}

// Create inserts a new delivery log row.
func (r *DeliveryLogRepo) Create(ctx context.Context, l *domain.DeliveryLog) error {
	query := `INSERT INTO webhook_delivery_logs
		(id, organization_id, provider, event_type, webhook_url, payload,
		 status, http_status, attempt, max_attempts, next_retry_at, last_error,
		 delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.OrganizationID, string(l.Provider), string(l.Event), l.WebhookURL, l.Payload,
		string(l.Status), l.HTTPStatus, l.Attempt, l.MaxAttempts, l.NextRetryAt, l.LastError,
		l.DeliveredAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery log: %w", err)
	}
	return nil
}

// Update writes the mutable delivery state back by id. The payload and URL
// are included because a redelivery re-signs the envelope and may follow a
// moved receiver.
func (r *DeliveryLogRepo) Update(ctx context.Context, l *domain.DeliveryLog) error {
	l.UpdatedAt = time.Now().UTC()
	query := `UPDATE webhook_delivery_logs
		SET status = $1, http_status = $2, attempt = $3, webhook_url = $4, payload = $5,
		    next_retry_at = $6, last_error = $7, delivered_at = $8, updated_at = $9
		WHERE id = $10`

	_, err := r.pool.Exec(ctx, query,
		string(l.Status), l.HTTPStatus, l.Attempt, l.WebhookURL, l.Payload,
		l.NextRetryAt, l.LastError, l.DeliveredAt, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update delivery log: %w", err)
	}
	return nil
}

// GetByID fetches a delivery log by its UUID.
func (r *DeliveryLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryLog, error) {
	query := `SELECT ` + deliveryLogColumns + ` FROM webhook_delivery_logs WHERE id = $1`

	l, err := scanDeliveryLog(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery log by id: %w", err)
	}
	return l, nil
}

// List returns one page of an organization's delivery logs, newest first,
// with the total row count for the filter.
func (r *DeliveryLogRepo) List(ctx context.Context, params ports.DeliveryListParams) ([]domain.DeliveryLog, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}

	where := `WHERE organization_id = $1`
	args := []any{params.OrganizationID}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.Event != nil {
		args = append(args, string(*params.Event))
		where += fmt.Sprintf(" AND event_type = $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM webhook_delivery_logs ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count delivery logs: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	args = append(args, params.PageSize, offset)
	query := fmt.Sprintf(`SELECT %s FROM webhook_delivery_logs %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		deliveryLogColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list delivery logs: %w", err)
	}
	defer rows.Close()

	logs, err := collectDeliveryLogs(rows)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ListDueForRetry returns RETRYING rows whose next_retry_at has elapsed,
// at most perOrgLimit per organization so one tenant's backlog cannot
// starve the sweep. Ordering is oldest due first within each tenant.
func (r *DeliveryLogRepo) ListDueForRetry(ctx context.Context, now time.Time, perOrgLimit int) ([]domain.DeliveryLog, error) {
	query := `SELECT ` + deliveryLogColumns + ` FROM (
			SELECT ` + deliveryLogColumns + `,
				ROW_NUMBER() OVER (PARTITION BY organization_id ORDER BY next_retry_at) AS rn
			FROM webhook_delivery_logs
			WHERE status = $1 AND next_retry_at <= $2
		) due
		WHERE rn <= $3
		ORDER BY next_retry_at`

	rows, err := r.pool.Query(ctx, query, string(domain.DeliveryStatusRetrying), now, perOrgLimit)
	if err != nil {
		return nil, fmt.Errorf("list due retries: %w", err)
	}
	defer rows.Close()

	return collectDeliveryLogs(rows)
}

// DeleteOlderThan removes at most batchSize rows created before cutoff.
func (r *DeliveryLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `DELETE FROM webhook_delivery_logs
		WHERE id IN (
			SELECT id FROM webhook_delivery_logs
			WHERE created_at < $1
			ORDER BY created_at
			LIMIT $2
		)`

	tag, err := r.pool.Exec(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete old delivery logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeliveryLog(row rowScanner) (*domain.DeliveryLog, error) {
	l := &domain.DeliveryLog{}
	var provider, event, status string
	if err := row.Scan(
		&l.ID, &l.OrganizationID, &provider, &event, &l.WebhookURL, &l.Payload,
		&status, &l.HTTPStatus, &l.Attempt, &l.MaxAttempts, &l.NextRetryAt, &l.LastError,
		&l.DeliveredAt, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.Provider = domain.Provider(provider)
	l.Event = domain.EventType(event)
	l.Status = domain.DeliveryStatus(status)
	return l, nil
}

func collectDeliveryLogs(rows pgx.Rows) ([]domain.DeliveryLog, error) {
	var logs []domain.DeliveryLog
	for rows.Next() {
		l, err := scanDeliveryLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}
