package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

func newTestLoader(repo *MockCostRepository, logger types.Logger) *SeriesLoader {
	l := NewSeriesLoader(repo, logger)
	l.now = fixedNow
	return l
}

func TestLoadSeries_FixedWindowUsesPreloadedWithoutNetwork(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})

	preloaded := points("2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14")
	snapshot := entity.ProviderCostSnapshot{
		ProviderID:       "aws-prod",
		PreloadedWindows: map[string]entity.CostSeries{"30days": preloaded},
	}
	sel, err := entity.FixedWindow(30)
	require.NoError(t, err)

	result, err := loader.LoadSeries(context.Background(), "aws-prod", sel, snapshot)

	require.NoError(t, err)
	assert.Equal(t, preloaded, result.Series)
	assert.Equal(t, SourcePreloaded, result.Source)
	repo.AssertNotCalled(t, "GetDailyCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadSeries_FixedWindowMissingIsEmptyWithoutNetwork(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})
	sel, _ := entity.FixedWindow(60)

	result, err := loader.LoadSeries(context.Background(), "aws-prod", sel, entity.ProviderCostSnapshot{})

	require.NoError(t, err)
	assert.Empty(t, result.Series)
	assert.Equal(t, SourceEmpty, result.Source)
	repo.AssertNotCalled(t, "GetDailyCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadSeries_FreshFetchWins(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})
	sel := entity.CustomRange(day("2024-01-01"), day("2024-01-31"))

	fresh := points("2024-01-02", "2024-01-03")
	repo.On("GetDailyCosts", mock.Anything, "gcp-data", day("2024-01-01"), day("2024-01-31")).Return(fresh, nil)

	snapshot := entity.ProviderCostSnapshot{AllHistorical: points("2024-01-05")}
	result, err := loader.LoadSeries(context.Background(), "gcp-data", sel, snapshot)

	require.NoError(t, err)
	assert.Equal(t, fresh, result.Series)
	assert.Equal(t, SourceFresh, result.Source)
	repo.AssertExpectations(t)
}

func TestLoadSeries_FreshFetchIsClippedToRange(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})
	sel := entity.CustomRange(day("2024-01-01"), day("2024-01-31"))

	repo.On("GetDailyCosts", mock.Anything, "gcp-data", mock.Anything, mock.Anything).
		Return(points("2023-12-31", "2024-01-10", "2024-02-01"), nil)

	result, err := loader.LoadSeries(context.Background(), "gcp-data", sel, entity.ProviderCostSnapshot{})

	require.NoError(t, err)
	require.Len(t, result.Series, 1)
	assert.Equal(t, day("2024-01-10"), result.Series[0].Date)
}

func TestLoadSeries_FetchFailureFallsBackToHistorical(t *testing.T) {
	repo := new(MockCostRepository)
	logger := &fakeConsole{}
	loader := newTestLoader(repo, logger)
	sel := entity.CustomRange(day("2024-01-01"), day("2024-01-31"))

	repo.On("GetDailyCosts", mock.Anything, "azure-sub", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	snapshot := entity.ProviderCostSnapshot{
		AllHistorical: points("2023-12-20", "2024-01-03", "2024-01-15", "2024-01-31", "2024-02-02"),
	}
	result, err := loader.LoadSeries(context.Background(), "azure-sub", sel, snapshot)

	require.NoError(t, err)
	assert.Equal(t, SourceHistorical, result.Source)
	require.Len(t, result.Series, 3)
	assert.Equal(t, day("2024-01-03"), result.Series[0].Date)
	assert.Equal(t, day("2024-01-31"), result.Series[2].Date)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "connection reset")
}

func TestLoadSeries_EmptyFetchFallsBackToHistorical(t *testing.T) {
	repo := new(MockCostRepository)
	logger := &fakeConsole{}
	loader := newTestLoader(repo, logger)
	sel := entity.CustomRange(day("2024-01-01"), day("2024-01-31"))

	repo.On("GetDailyCosts", mock.Anything, "azure-sub", mock.Anything, mock.Anything).
		Return(entity.CostSeries{}, nil)

	snapshot := entity.ProviderCostSnapshot{AllHistorical: points("2024-01-03")}
	result, err := loader.LoadSeries(context.Background(), "azure-sub", sel, snapshot)

	require.NoError(t, err)
	assert.Equal(t, SourceHistorical, result.Source)
	assert.Len(t, result.Series, 1)
	assert.Empty(t, logger.warnings)
	assert.Len(t, logger.infos, 1)
}

func TestLoadSeries_RelativeMonthsFallsBackToPreloadedWindow(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})
	sel, err := entity.RelativeMonths(4)
	require.NoError(t, err)

	repo.On("GetDailyCosts", mock.Anything, "aws-prod", mock.Anything, mock.Anything).
		Return(nil, errors.New("throttled"))

	window := points("2024-04-01", "2024-05-01", "2024-06-01")
	snapshot := entity.ProviderCostSnapshot{
		AllHistorical:    points("2023-01-01"),
		PreloadedWindows: map[string]entity.CostSeries{"4months": window, "6months": points("2024-01-01")},
	}
	result, err := loader.LoadSeries(context.Background(), "aws-prod", sel, snapshot)

	require.NoError(t, err)
	assert.Equal(t, SourcePreloadedFallback, result.Source)
	assert.Equal(t, window, result.Series)
}

func TestLoadSeries_CustomRangeWithoutDataIsEmpty(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})
	sel := entity.CustomRange(day("2022-01-01"), day("2022-01-31"))

	repo.On("GetDailyCosts", mock.Anything, "aws-prod", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom"))

	snapshot := entity.ProviderCostSnapshot{
		PreloadedWindows: map[string]entity.CostSeries{"4months": points("2024-04-01")},
	}
	result, err := loader.LoadSeries(context.Background(), "aws-prod", sel, snapshot)

	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, result.Source)
	assert.NotNil(t, result.Series)
	assert.Empty(t, result.Series)
	assert.Equal(t, day("2022-01-01"), result.Range.Start)
}

func TestLoadSeries_InvalidRangeRejectedBeforeFetch(t *testing.T) {
	repo := new(MockCostRepository)
	loader := newTestLoader(repo, &fakeConsole{})
	sel := entity.CustomRange(day("2024-02-01"), day("2024-01-01"))

	_, err := loader.LoadSeries(context.Background(), "aws-prod", sel, entity.ProviderCostSnapshot{})

	assert.ErrorIs(t, err, types.ErrInvalidRange)
	repo.AssertNotCalled(t, "GetDailyCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
