package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
)

// CostRepositoryImpl implements CostRepository over the backend API.
type CostRepositoryImpl struct {
	client *Client
	now    func() time.Time
}

// NewAPIRepository creates a cost repository backed by client.
func NewAPIRepository(client *Client) repository.CostRepository {
	return &CostRepositoryImpl{client: client, now: time.Now}
}

// ListProviders returns the providers configured in the backend.
func (r *CostRepositoryImpl) ListProviders(ctx context.Context) ([]entity.Provider, error) {
	var providers []entity.Provider
	if err := r.client.do(ctx, http.MethodGet, "/api/providers", nil, &providers); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	if providers == nil {
		providers = []entity.Provider{}
	}
	return providers, nil
}

// GetSnapshot loads the cost bundle of one provider.
func (r *CostRepositoryImpl) GetSnapshot(ctx context.Context, providerID string) (entity.ProviderCostSnapshot, error) {
	var dto snapshotDTO
	path := fmt.Sprintf("/api/providers/%s/costs/snapshot", url.PathEscape(providerID))
	if err := r.client.do(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return entity.ProviderCostSnapshot{}, fmt.Errorf("failed to get snapshot for %s: %w", providerID, err)
	}
	return dto.toEntity(providerID, r.now()), nil
}

// GetDailyCosts returns the daily costs between start and end, both inclusive.
func (r *CostRepositoryImpl) GetDailyCosts(ctx context.Context, providerID string, start, end time.Time) (entity.CostSeries, error) {
	query := url.Values{}
	query.Set("start", start.Format(entity.DateLayout))
	query.Set("end", end.Format(entity.DateLayout))
	path := fmt.Sprintf("/api/providers/%s/costs/daily?%s", url.PathEscape(providerID), query.Encode())

	var points []costPointDTO
	if err := r.client.do(ctx, http.MethodGet, path, nil, &points); err != nil {
		return nil, fmt.Errorf("failed to get daily costs for %s: %w", providerID, err)
	}
	return toSeries(points), nil
}

// TriggerSync asks the backend to refresh its cache. An empty providerID syncs everything.
func (r *CostRepositoryImpl) TriggerSync(ctx context.Context, providerID string) (entity.SyncResult, error) {
	var result entity.SyncResult
	if err := r.client.do(ctx, http.MethodPost, "/api/sync", syncRequest{ProviderID: providerID}, &result); err != nil {
		return entity.SyncResult{}, fmt.Errorf("failed to trigger sync: %w", err)
	}
	return result, nil
}
