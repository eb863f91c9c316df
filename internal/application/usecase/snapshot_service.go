package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// SnapshotOutcome is the result of loading one provider in LoadAll.
type SnapshotOutcome struct {
	ProviderID string
	Snapshot   entity.ProviderCostSnapshot
	Err        error
}

// SnapshotService loads provider snapshots and keeps their historical series in the
// local history cache.
type SnapshotService struct {
	costRepo    repository.CostRepository
	cache       repository.HistoryCache
	logger      types.Logger
	concurrency int
}

// NewSnapshotService creates a snapshot service. cache may be nil.
func NewSnapshotService(
	costRepo repository.CostRepository,
	cache repository.HistoryCache,
	logger types.Logger,
	concurrency int,
) *SnapshotService {
	if concurrency <= 0 {
		concurrency = types.DefaultConcurrency
	}
	return &SnapshotService{
		costRepo:    costRepo,
		cache:       cache,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Load fetches the snapshot of a provider and merges its historical series with the cache.
// Fetched points win over cached points of the same date.
func (s *SnapshotService) Load(ctx context.Context, providerID string) (entity.ProviderCostSnapshot, error) {
	snapshot, err := s.costRepo.GetSnapshot(ctx, providerID)
	if err != nil {
		return entity.ProviderCostSnapshot{}, fmt.Errorf("failed to load snapshot for %s: %w", providerID, err)
	}
	if snapshot.ProviderID == "" {
		snapshot.ProviderID = providerID
	}
	if snapshot.ProviderName == "" {
		snapshot.ProviderName = providerID
	}
	if snapshot.Currency == "" {
		snapshot.Currency = types.DefaultBaseCurrency
	}

	fresh := entity.NormalizeSeries(snapshot.AllHistorical)
	if s.cache == nil {
		snapshot.AllHistorical = fresh
		return snapshot, nil
	}

	cached, err := s.cache.Load(ctx, providerID)
	if err != nil {
		s.logger.LogWarning("Could not read cached history for %s: %v", providerID, err)
		cached = nil
	}

	merged := entity.MergeSeries(cached, fresh)
	snapshot.AllHistorical = merged

	if len(fresh) > 0 {
		if err := s.cache.Save(ctx, providerID, fresh); err != nil {
			s.logger.LogWarning("Could not update cached history for %s: %v", providerID, err)
		}
	}
	return snapshot, nil
}

// LoadAll loads several providers concurrently. Failures are reported per provider and
// outcomes keep the order of providerIDs.
func (s *SnapshotService) LoadAll(ctx context.Context, providerIDs []string) []SnapshotOutcome {
	outcomes := make([]SnapshotOutcome, len(providerIDs))

	var group errgroup.Group
	group.SetLimit(s.concurrency)

	for i, providerID := range providerIDs {
		group.Go(func() error {
			snapshot, err := s.Load(ctx, providerID)
			outcomes[i] = SnapshotOutcome{ProviderID: providerID, Snapshot: snapshot, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	return outcomes
}
