package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

type MockCostRepository struct {
	mock.Mock
}

func (m *MockCostRepository) ListProviders(ctx context.Context) ([]entity.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Provider), args.Error(1)
}

func (m *MockCostRepository) GetSnapshot(ctx context.Context, providerID string) (entity.ProviderCostSnapshot, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(entity.ProviderCostSnapshot), args.Error(1)
}

func (m *MockCostRepository) GetDailyCosts(ctx context.Context, providerID string, start, end time.Time) (entity.CostSeries, error) {
	args := m.Called(ctx, providerID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.CostSeries), args.Error(1)
}

func (m *MockCostRepository) TriggerSync(ctx context.Context, providerID string) (entity.SyncResult, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(entity.SyncResult), args.Error(1)
}

type MockHistoryCache struct {
	mock.Mock
}

func (m *MockHistoryCache) Load(ctx context.Context, providerID string) (entity.CostSeries, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.CostSeries), args.Error(1)
}

func (m *MockHistoryCache) Save(ctx context.Context, providerID string, series entity.CostSeries) error {
	return m.Called(ctx, providerID, series).Error(0)
}

func (m *MockHistoryCache) Close() error { return nil }

// fakeConsole records log lines and discards rendering.
type fakeConsole struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	errors   []string
	success  []string
	printed  []string
	bars     [][]types.BarPoint
}

func (c *fakeConsole) LogInfo(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success = append(c.success, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) Print(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printed = append(c.printed, fmt.Sprint(a...))
}

func (c *fakeConsole) Printf(format string, a ...interface{}) { c.Print(fmt.Sprintf(format, a...)) }
func (c *fakeConsole) Println(a ...interface{})               { c.Print(fmt.Sprint(a...)) }

func (c *fakeConsole) Status(string) types.StatusHandle { return fakeStatus{} }

func (c *fakeConsole) CreateTable() types.TableInterface { return &fakeTable{} }

func (c *fakeConsole) DisplaySeriesBars(_ string, _ string, points []types.BarPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bars = append(c.bars, points)
}

type fakeStatus struct{}

func (fakeStatus) Update(string) {}
func (fakeStatus) Stop()         {}

type fakeTable struct {
	rows [][]interface{}
}

func (t *fakeTable) AddColumn(string, ...interface{}) {}
func (t *fakeTable) AddRow(cells ...interface{})      { t.rows = append(t.rows, cells) }
func (t *fakeTable) Render() string                   { return fmt.Sprintf("%d rows", len(t.rows)) }

func day(s string) time.Time { return entity.MustParseDay(s) }

func points(dates ...string) entity.CostSeries {
	out := make(entity.CostSeries, 0, len(dates))
	for i, d := range dates {
		out = append(out, entity.CostDataPoint{Date: day(d), Cost: float64(i + 1)})
	}
	return out
}

func fixedNow() time.Time { return time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC) }
