package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Delivery Log Repo ---

type inMemoryDeliveryLogRepo struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]*domain.DeliveryLog
}

func newInMemoryDeliveryLogRepo() *inMemoryDeliveryLogRepo {
	return &inMemoryDeliveryLogRepo{logs: make(map[uuid.UUID]*domain.DeliveryLog)}
}

func (r *inMemoryDeliveryLogRepo) Create(ctx context.Context, l *domain.DeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.logs[l.ID] = &cp
	return nil
}

func (r *inMemoryDeliveryLogRepo) Update(ctx context.Context, l *domain.DeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.logs[l.ID] = &cp
	return nil
}

func (r *inMemoryDeliveryLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryDeliveryLogRepo) List(ctx context.Context, params ports.DeliveryListParams) ([]domain.DeliveryLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.DeliveryLog
	for _, l := range r.logs {
		if l.OrganizationID != params.OrganizationID {
			continue
		}
		if params.Status != nil && l.Status != *params.Status {
			continue
		}
		if params.Event != nil && l.Event != *params.Event {
			continue
		}
		matched = append(matched, *l)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *inMemoryDeliveryLogRepo) ListDueForRetry(ctx context.Context, now time.Time, perOrgLimit int) ([]domain.DeliveryLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perOrg := make(map[uuid.UUID][]domain.DeliveryLog)
	for _, l := range r.logs {
		if l.Status != domain.DeliveryStatusRetrying || l.NextRetryAt == nil || l.NextRetryAt.After(now) {
			continue
		}
		perOrg[l.OrganizationID] = append(perOrg[l.OrganizationID], *l)
	}

	var due []domain.DeliveryLog
	for _, logs := range perOrg {
		sort.Slice(logs, func(i, j int) bool { return logs[i].NextRetryAt.Before(*logs[j].NextRetryAt) })
		if len(logs) > perOrgLimit {
			logs = logs[:perOrgLimit]
		}
		due = append(due, logs...)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRetryAt.Before(*due[j].NextRetryAt) })
	return due, nil
}

func (r *inMemoryDeliveryLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, l := range r.logs {
		if deleted >= int64(batchSize) {
			break
		}
		if l.CreatedAt.Before(cutoff) {
			delete(r.logs, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- In-Memory Integration Registry ---

type registryKey struct {
	orgID    uuid.UUID
	provider domain.Provider
}

type inMemoryIntegrationRegistry struct {
	mu           sync.RWMutex
	integrations map[registryKey]*domain.Integration
}

func newInMemoryIntegrationRegistry() *inMemoryIntegrationRegistry {
	return &inMemoryIntegrationRegistry{integrations: make(map[registryKey]*domain.Integration)}
}

func (r *inMemoryIntegrationRegistry) put(i *domain.Integration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *i
	r.integrations[registryKey{i.OrganizationID, i.Provider}] = &cp
}

func (r *inMemoryIntegrationRegistry) GetIntegration(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.integrations[registryKey{orgID, provider}]
	if !ok {
		return nil, nil
	}
	cp := *i
	cp.Secret = ""
	return &cp, nil
}

func (r *inMemoryIntegrationRegistry) GetIntegrationWithSecret(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.integrations[registryKey{orgID, provider}]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *inMemoryIntegrationRegistry) UpdateSyncStatus(ctx context.Context, orgID uuid.UUID, provider domain.Provider, status domain.SyncStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.integrations[registryKey{orgID, provider}]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	i.LastSyncStatus = &status
	i.LastSyncError = errMsg
	i.LastSyncAt = &now
	return nil
}

// --- Stub Sweep Lock ---

type stubSweepLock struct{}

func (stubSweepLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	return "stub-token", true, nil
}

func (stubSweepLock) Release(ctx context.Context, token string) error { return nil }
