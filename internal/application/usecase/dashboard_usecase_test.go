package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) ExportSnapshotsToCSV(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error) {
	args := m.Called(data, currency, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportRepository) ExportSnapshotsToJSON(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error) {
	args := m.Called(data, currency, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportRepository) ExportSnapshotsToPDF(data []entity.ProviderCostSnapshot, currency, filename, outputDir string) (string, error) {
	args := m.Called(data, currency, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportRepository) ExportSeriesToCSV(report repository.SeriesReport, filename, outputDir string) (string, error) {
	args := m.Called(report, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportRepository) ExportSeriesToJSON(report repository.SeriesReport, filename, outputDir string) (string, error) {
	args := m.Called(report, filename, outputDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportRepository) ExportSeriesToPDF(report repository.SeriesReport, filename, outputDir string) (string, error) {
	args := m.Called(report, filename, outputDir)
	return args.String(0), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, localPath string) (string, error) {
	args := m.Called(ctx, localPath)
	return args.String(0), args.Error(1)
}

func newTestUseCase(repo *MockCostRepository, exporter *MockExportRepository, uploader repository.ReportUploader, console *fakeConsole) *DashboardUseCase {
	loader := NewSeriesLoader(repo, console)
	loader.now = fixedNow
	snapshots := NewSnapshotService(repo, nil, console, 2)
	converter := service.NewCurrencyConverter("USD", map[string]float64{"BRL": 5}, console)
	return NewDashboardUseCase(repo, snapshots, loader, exporter, uploader, converter, console)
}

func providers(ids ...string) []entity.Provider {
	out := make([]entity.Provider, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.Provider{ID: id, Name: id, Type: "aws"})
	}
	return out
}

func TestResolveProviders(t *testing.T) {
	repo := new(MockCostRepository)
	repo.On("ListProviders", mock.Anything).Return(providers("prod", "dev"), nil)
	console := &fakeConsole{}
	uc := newTestUseCase(repo, nil, nil, console)

	ids, err := uc.ResolveProviders(context.Background(), &types.CLIArgs{})
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "dev"}, ids)

	ids, err = uc.ResolveProviders(context.Background(), &types.CLIArgs{Providers: []string{"dev", "qa"}, Source: "aws"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dev"}, ids)
	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "qa")

	_, err = uc.ResolveProviders(context.Background(), &types.CLIArgs{Providers: []string{"qa"}})
	assert.ErrorIs(t, err, types.ErrProviderNotFound)
}

func TestResolveProvidersEmptySource(t *testing.T) {
	repo := new(MockCostRepository)
	repo.On("ListProviders", mock.Anything).Return([]entity.Provider{}, nil)

	_, err := newTestUseCase(repo, nil, nil, &fakeConsole{}).ResolveProviders(context.Background(), &types.CLIArgs{})

	assert.ErrorIs(t, err, types.ErrNoProvidersFound)
}

func TestSelectorFromArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    types.CLIArgs
		wantKey string
		wantErr error
	}{
		{name: "default period", args: types.CLIArgs{}, wantKey: "30days"},
		{name: "relative months", args: types.CLIArgs{Period: "6m"}, wantKey: "6months"},
		{name: "custom range", args: types.CLIArgs{Start: "2024-01-01", End: "2024-01-31"}, wantKey: "custom:2024-01-01:2024-01-31"},
		{name: "inverted range", args: types.CLIArgs{Start: "2024-02-01", End: "2024-01-01"}, wantErr: types.ErrInvalidRange},
		{name: "start only", args: types.CLIArgs{Start: "2024-02-01"}, wantErr: types.ErrInvalidRange},
		{name: "unsupported window", args: types.CLIArgs{Period: "45d"}, wantErr: types.ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := SelectorFromArgs(&tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, sel.Key())
		})
	}
}

func TestFormatServiceCosts(t *testing.T) {
	up := 12.5
	services := []entity.ServiceCost{
		{Name: "Amazon S3", Cost: 20},
		{Name: "Amazon EC2", Cost: 120, ChangePercentVsPriorPeriod: &up},
		{Name: "Tax", Cost: 0},
		{Name: "AWS Lambda", Cost: 3},
	}

	lines := FormatServiceCosts(services, "$", 2)

	assert.Equal(t, []string{
		"Amazon EC2: $120.00 (+12.5%)",
		"Amazon S3: $20.00",
		"... and 1 more",
	}, lines)
	assert.Equal(t, "Amazon S3", services[0].Name)
	assert.Equal(t, []string{"No costs associated with this provider"}, FormatServiceCosts(nil, "$", 2))
}

func TestFormatBudgetInfo(t *testing.T) {
	lines := FormatBudgetInfo([]entity.BudgetInfo{{Name: "Monthly", Limit: 200, Actual: 50, Forecast: 180}}, "$")

	assert.Equal(t, []string{
		"Monthly limit: $200.00",
		"Monthly actual: $50.00 (25%)",
		"Monthly forecast: $180.00",
	}, lines)
	assert.Equal(t, []string{"No budgets found"}, FormatBudgetInfo(nil, "$"))
}

func TestRunDashboardProjectsAndExports(t *testing.T) {
	repo := new(MockCostRepository)
	exporter := new(MockExportRepository)
	uploader := new(MockUploader)
	console := &fakeConsole{}

	repo.On("ListProviders", mock.Anything).Return(providers("prod", "dev"), nil)
	repo.On("GetSnapshot", mock.Anything, "prod").Return(entity.ProviderCostSnapshot{CurrentMonth: 10, LastMonth: 8}, nil)
	repo.On("GetSnapshot", mock.Anything, "dev").Return(entity.ProviderCostSnapshot{}, errors.New("ExpiredToken"))

	exporter.On("ExportSnapshotsToCSV", mock.MatchedBy(func(data []entity.ProviderCostSnapshot) bool {
		return len(data) == 1 && data[0].CurrentMonth == 50 && data[0].Currency == "BRL"
	}), "BRL", "monthly", "/tmp/reports").Return("/tmp/reports/monthly.csv", nil)
	uploader.On("Upload", mock.Anything, "/tmp/reports/monthly.csv").Return("s3://finops/monthly.csv", nil)

	uc := newTestUseCase(repo, exporter, uploader, console)
	err := uc.RunDashboard(context.Background(), &types.CLIArgs{
		Currency:   "BRL",
		ReportName: "monthly",
		ReportType: []string{"csv", "xlsx"},
		Dir:        "/tmp/reports",
	})

	require.NoError(t, err)
	exporter.AssertExpectations(t)
	uploader.AssertExpectations(t)
	assert.Len(t, console.success, 2)
	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "xlsx")
}

func TestRunDashboardKeepsProviderCurrencies(t *testing.T) {
	repo := new(MockCostRepository)
	exporter := new(MockExportRepository)
	console := &fakeConsole{}

	repo.On("ListProviders", mock.Anything).Return(providers("gcp", "prod"), nil)
	repo.On("GetSnapshot", mock.Anything, "gcp").Return(entity.ProviderCostSnapshot{Currency: "EUR", CurrentMonth: 100}, nil)
	repo.On("GetSnapshot", mock.Anything, "prod").Return(entity.ProviderCostSnapshot{CurrentMonth: 10}, nil)

	exporter.On("ExportSnapshotsToJSON", mock.MatchedBy(func(data []entity.ProviderCostSnapshot) bool {
		return len(data) == 2 &&
			data[0].Currency == "EUR" && data[0].CurrentMonth == 100 &&
			data[1].Currency == "USD" && data[1].CurrentMonth == 10
	}), "", "monthly", "/tmp/reports").Return("/tmp/reports/monthly.json", nil)

	uc := newTestUseCase(repo, exporter, nil, console)
	err := uc.RunDashboard(context.Background(), &types.CLIArgs{
		ReportName: "monthly",
		ReportType: []string{"json"},
		Dir:        "/tmp/reports",
	})

	require.NoError(t, err)
	exporter.AssertExpectations(t)
	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "different currencies")
}

func TestRunDashboardDoesNotReconvertSourceCurrency(t *testing.T) {
	repo := new(MockCostRepository)
	exporter := new(MockExportRepository)
	console := &fakeConsole{}

	repo.On("ListProviders", mock.Anything).Return(providers("gcp"), nil)
	repo.On("GetSnapshot", mock.Anything, "gcp").Return(entity.ProviderCostSnapshot{Currency: "BRL", CurrentMonth: 100}, nil)
	exporter.On("ExportSnapshotsToCSV", mock.MatchedBy(func(data []entity.ProviderCostSnapshot) bool {
		return len(data) == 1 && data[0].Currency == "USD" && data[0].CurrentMonth == 20
	}), "USD", "monthly", "/tmp/reports").Return("/tmp/reports/monthly.csv", nil).Once()
	exporter.On("ExportSnapshotsToCSV", mock.MatchedBy(func(data []entity.ProviderCostSnapshot) bool {
		return len(data) == 1 && data[0].Currency == "BRL" && data[0].CurrentMonth == 100
	}), "BRL", "monthly", "/tmp/reports").Return("/tmp/reports/monthly.csv", nil).Once()

	uc := newTestUseCase(repo, exporter, nil, console)
	for _, currency := range []string{"USD", "BRL"} {
		err := uc.RunDashboard(context.Background(), &types.CLIArgs{
			Currency:   currency,
			ReportName: "monthly",
			ReportType: []string{"csv"},
			Dir:        "/tmp/reports",
		})
		require.NoError(t, err)
	}

	exporter.AssertExpectations(t)
	assert.Empty(t, console.warnings)
}

func TestRunSeriesRendersBuckets(t *testing.T) {
	repo := new(MockCostRepository)
	console := &fakeConsole{}

	repo.On("ListProviders", mock.Anything).Return(providers("prod"), nil)
	repo.On("GetSnapshot", mock.Anything, "prod").Return(entity.ProviderCostSnapshot{ProviderName: "Production"}, nil)
	repo.On("GetDailyCosts", mock.Anything, "prod", mock.Anything, mock.Anything).Return(entity.CostSeries{
		{Date: day("2024-01-02"), Cost: 1.5},
		{Date: day("2024-01-30"), Cost: 2.5},
		{Date: day("2024-02-01"), Cost: 4},
	}, nil)

	uc := newTestUseCase(repo, nil, nil, console)
	err := uc.RunSeries(context.Background(), &types.CLIArgs{
		Start:       "2024-01-01",
		End:         "2024-02-29",
		Granularity: "month",
	})

	require.NoError(t, err)
	require.Len(t, console.bars, 1)
	assert.Equal(t, []types.BarPoint{{Label: "Jan 2024", Cost: 4}, {Label: "Feb 2024", Cost: 4}}, console.bars[0])
}

func TestRunSeriesEmptyRange(t *testing.T) {
	repo := new(MockCostRepository)
	console := &fakeConsole{}

	repo.On("ListProviders", mock.Anything).Return(providers("prod"), nil)
	repo.On("GetSnapshot", mock.Anything, "prod").Return(entity.ProviderCostSnapshot{}, nil)

	uc := newTestUseCase(repo, nil, nil, console)
	err := uc.RunSeries(context.Background(), &types.CLIArgs{Period: "60d"})

	require.NoError(t, err)
	assert.Empty(t, console.bars)
	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "No cost data in range")
	repo.AssertNotCalled(t, "GetDailyCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSync(t *testing.T) {
	repo := new(MockCostRepository)
	console := &fakeConsole{}
	repo.On("TriggerSync", mock.Anything, "").Return(entity.SyncResult{
		Success: true,
		Errors:  []entity.ProviderSyncError{{ProviderID: "azure-sub", Error: "token expired"}},
	}, nil)

	err := newTestUseCase(repo, nil, nil, console).RunSync(context.Background(), &types.CLIArgs{})

	require.NoError(t, err)
	require.Len(t, console.errors, 1)
	assert.Contains(t, console.errors[0], "azure-sub")
	require.Len(t, console.warnings, 1)
	assert.Contains(t, console.warnings[0], "1 error(s)")
}
