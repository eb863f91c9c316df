package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
)

func openTestCache(t *testing.T) *HistoryCacheImpl {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", DefaultFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoad(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "aws-prod", entity.CostSeries{
		{Date: entity.MustParseDay("2024-01-02"), Cost: 2},
		{Date: entity.MustParseDay("2024-01-01"), Cost: 1},
	}))
	require.NoError(t, c.Save(ctx, "gcp-data", entity.CostSeries{
		{Date: entity.MustParseDay("2024-01-01"), Cost: 50},
	}))

	series, err := c.Load(ctx, "aws-prod")

	require.NoError(t, err)
	assert.Equal(t, entity.CostSeries{
		{Date: entity.MustParseDay("2024-01-01"), Cost: 1},
		{Date: entity.MustParseDay("2024-01-02"), Cost: 2},
	}, series)
}

func TestSaveUpsertsByDate(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "aws-prod", entity.CostSeries{
		{Date: entity.MustParseDay("2024-01-01"), Cost: 1},
		{Date: entity.MustParseDay("2024-01-02"), Cost: 2},
	}))
	require.NoError(t, c.Save(ctx, "aws-prod", entity.CostSeries{
		{Date: entity.MustParseDay("2024-01-02"), Cost: 2.5},
		{Date: entity.MustParseDay("2024-01-03"), Cost: 3},
	}))

	series, err := c.Load(ctx, "aws-prod")

	require.NoError(t, err)
	assert.Equal(t, entity.CostSeries{
		{Date: entity.MustParseDay("2024-01-01"), Cost: 1},
		{Date: entity.MustParseDay("2024-01-02"), Cost: 2.5},
		{Date: entity.MustParseDay("2024-01-03"), Cost: 3},
	}, series)
}

func TestLoadUnknownProviderIsEmpty(t *testing.T) {
	series, err := openTestCache(t).Load(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestLoad_CorruptDayIsError(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "aws-prod", entity.CostSeries{{Date: entity.MustParseDay("2024-01-01"), Cost: 1}}))
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO daily_costs (provider_id, day, cost, updated_at) VALUES (?, ?, ?, ?)",
		"aws-prod", "01/02/2024", 2.0, "2024-01-03T00:00:00Z")
	require.NoError(t, err)

	_, err = c.Load(ctx, "aws-prod")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "01/02/2024")
	assert.Contains(t, err.Error(), "aws-prod")
}
