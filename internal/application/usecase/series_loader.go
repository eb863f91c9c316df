package usecase

import (
	"context"
	"time"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// SeriesSource tells which tier of the fallback chain produced a series.
type SeriesSource string

const (
	SourcePreloaded         SeriesSource = "preloaded"
	SourceFresh             SeriesSource = "fresh"
	SourceHistorical        SeriesSource = "historical"
	SourcePreloadedFallback SeriesSource = "preloaded-fallback"
	SourceEmpty             SeriesSource = "empty"
)

// SeriesResult is the outcome of LoadSeries.
type SeriesResult struct {
	Series entity.CostSeries
	Range  entity.DateRange
	Source SeriesSource
}

// seriesRequest carries everything a tier needs.
type seriesRequest struct {
	providerID string
	selector   entity.PeriodSelector
	bounds     entity.DateRange
	snapshot   entity.ProviderCostSnapshot
}

// seriesTier returns a series and true when it can serve the request.
type seriesTier struct {
	source SeriesSource
	load   func(ctx context.Context, req seriesRequest) (entity.CostSeries, bool)
}

// SeriesLoader resolves a selector to a cost series, walking an ordered chain of data
// sources: preloaded fixed windows, a fresh range fetch, the historical series of the
// snapshot and, for relative months, the preloaded window as last resort.
type SeriesLoader struct {
	costRepo repository.CostRepository
	logger   types.Logger
	now      func() time.Time
	tiers    []seriesTier
}

// NewSeriesLoader creates a loader backed by costRepo.
func NewSeriesLoader(costRepo repository.CostRepository, logger types.Logger) *SeriesLoader {
	l := &SeriesLoader{
		costRepo: costRepo,
		logger:   logger,
		now:      time.Now,
	}
	l.tiers = []seriesTier{
		{source: SourcePreloaded, load: l.fromPreloadedFixedWindow},
		{source: SourceFresh, load: l.fromFreshFetch},
		{source: SourceHistorical, load: l.fromHistorical},
		{source: SourcePreloadedFallback, load: l.fromPreloadedRelativeWindow},
	}
	return l
}

// LoadSeries returns the series for selector. Only invalid selectors produce an error:
// fetch failures are logged and recovered by the next tier, and a range without data
// yields an empty series with SourceEmpty.
func (l *SeriesLoader) LoadSeries(
	ctx context.Context,
	providerID string,
	selector entity.PeriodSelector,
	snapshot entity.ProviderCostSnapshot,
) (SeriesResult, error) {
	bounds, err := service.Resolve(selector, l.now())
	if err != nil {
		return SeriesResult{}, err
	}

	req := seriesRequest{
		providerID: providerID,
		selector:   selector,
		bounds:     bounds,
		snapshot:   snapshot,
	}

	for _, tier := range l.tiers {
		series, ok := tier.load(ctx, req)
		if !ok {
			continue
		}
		// A tier may end the chain without data (fixed window missing from the snapshot).
		if len(series) == 0 {
			break
		}
		return SeriesResult{Series: series, Range: bounds, Source: tier.source}, nil
	}

	return SeriesResult{Series: entity.CostSeries{}, Range: bounds, Source: SourceEmpty}, nil
}

func (l *SeriesLoader) fromPreloadedFixedWindow(_ context.Context, req seriesRequest) (entity.CostSeries, bool) {
	if req.selector.Kind != entity.PeriodFixedWindow {
		return nil, false
	}
	// Fixed windows never reach the network, even when the snapshot lacks the window.
	series, _ := req.snapshot.Window(req.selector.Key())
	return service.FilterRange(series, req.bounds), true
}

func (l *SeriesLoader) fromFreshFetch(ctx context.Context, req seriesRequest) (entity.CostSeries, bool) {
	if l.costRepo == nil {
		return nil, false
	}
	series, err := l.costRepo.GetDailyCosts(ctx, req.providerID, req.bounds.Start, req.bounds.End)
	if err != nil {
		l.logWarning("Range fetch failed for %s (%s): %v; using cached history", req.providerID, req.bounds, err)
		return nil, false
	}
	series = service.FilterRange(entity.NormalizeSeries(series), req.bounds)
	if len(series) == 0 {
		l.logInfo("Range fetch returned no points for %s (%s); using cached history", req.providerID, req.bounds)
		return nil, false
	}
	return series, true
}

func (l *SeriesLoader) fromHistorical(_ context.Context, req seriesRequest) (entity.CostSeries, bool) {
	series := service.FilterRange(req.snapshot.AllHistorical, req.bounds)
	return series, len(series) > 0
}

func (l *SeriesLoader) fromPreloadedRelativeWindow(_ context.Context, req seriesRequest) (entity.CostSeries, bool) {
	if req.selector.Kind != entity.PeriodRelativeMonths {
		return nil, false
	}
	series, ok := req.snapshot.Window(req.selector.Key())
	if !ok {
		return nil, false
	}
	series = service.FilterRange(series, req.bounds)
	return series, len(series) > 0
}

func (l *SeriesLoader) logWarning(format string, a ...interface{}) {
	if l.logger != nil {
		l.logger.LogWarning(format, a...)
	}
}

func (l *SeriesLoader) logInfo(format string, a ...interface{}) {
	if l.logger != nil {
		l.logger.LogInfo(format, a...)
	}
}
