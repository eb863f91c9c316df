package repository

import (
	"context"
	"time"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
)

// CostRepository defines the interface of a cost data source (AWS Cost Explorer, the backend API).
type CostRepository interface {
	// ListProviders returns the providers this source can report on.
	ListProviders(ctx context.Context) ([]entity.Provider, error)

	// GetSnapshot returns the full cost bundle of a provider, including the preloaded
	// fixed windows and the historical daily series.
	GetSnapshot(ctx context.Context, providerID string) (entity.ProviderCostSnapshot, error)

	// GetDailyCosts returns the daily series of a provider between start and end, both inclusive.
	GetDailyCosts(ctx context.Context, providerID string, start, end time.Time) (entity.CostSeries, error)

	// TriggerSync asks the source to refresh its cached data. An empty providerID means all providers.
	TriggerSync(ctx context.Context, providerID string) (entity.SyncResult, error)
}

// HistoryCache persists historical daily series between runs.
type HistoryCache interface {
	Load(ctx context.Context, providerID string) (entity.CostSeries, error)
	Save(ctx context.Context, providerID string, series entity.CostSeries) error
	Close() error
}
