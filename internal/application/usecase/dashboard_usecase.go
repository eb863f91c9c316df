package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/samber/lo"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// topServices é quantos serviços a tabela do dashboard lista por provider.
const topServices = 8

// DashboardUseCase atende os comandos dashboard, series e sync.
type DashboardUseCase struct {
	costRepo   repository.CostRepository
	snapshots  *SnapshotService
	loader     *SeriesLoader
	exportRepo repository.ExportRepository
	uploader   repository.ReportUploader
	converter  *service.CurrencyConverter
	console    types.ConsoleInterface
}

// NewDashboardUseCase cria um novo caso de uso do dashboard. uploader pode ser nil.
func NewDashboardUseCase(
	costRepo repository.CostRepository,
	snapshots *SnapshotService,
	loader *SeriesLoader,
	exportRepo repository.ExportRepository,
	uploader repository.ReportUploader,
	converter *service.CurrencyConverter,
	console types.ConsoleInterface,
) *DashboardUseCase {
	return &DashboardUseCase{
		costRepo:   costRepo,
		snapshots:  snapshots,
		loader:     loader,
		exportRepo: exportRepo,
		uploader:   uploader,
		converter:  converter,
		console:    console,
	}
}

// ResolveProviders determina quais providers entram no relatório com base nos argumentos.
func (uc *DashboardUseCase) ResolveProviders(ctx context.Context, args *types.CLIArgs) ([]string, error) {
	available, err := uc.costRepo.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	if len(available) == 0 {
		return nil, types.ErrNoProvidersFound
	}

	ids := lo.Map(available, func(p entity.Provider, _ int) string { return p.ID })
	if len(args.Providers) == 0 {
		return ids, nil
	}

	selected := []string{}
	for _, requested := range args.Providers {
		if lo.Contains(ids, requested) {
			selected = append(selected, requested)
			continue
		}
		uc.console.LogWarning("Provider '%s' not found in %s source", requested, args.Source)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrProviderNotFound, strings.Join(args.Providers, ", "))
	}
	return selected, nil
}

// RunDashboard carrega os providers selecionados e exibe a tabela de resumo. Cada provider
// é convertido a partir da sua própria moeda.
func (uc *DashboardUseCase) RunDashboard(ctx context.Context, args *types.CLIArgs) error {
	providerIDs, err := uc.ResolveProviders(ctx, args)
	if err != nil {
		return err
	}

	status := uc.console.Status(fmt.Sprintf("Loading cost data for %d provider(s)...", len(providerIDs)))
	outcomes := uc.snapshots.LoadAll(ctx, providerIDs)
	status.Stop()

	table := uc.console.CreateTable()
	table.AddColumn("Provider")
	table.AddColumn("Last Month")
	table.AddColumn("Current Month")
	table.AddColumn("Forecast")
	table.AddColumn("Credits / Savings")
	table.AddColumn("Cost By Service")
	table.AddColumn("Budget Status")

	exportData := []entity.ProviderCostSnapshot{}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			uc.addErrorToTable(table, outcome)
			continue
		}
		rate, currency := uc.converter.RateFor(outcome.Snapshot.Currency, args.Currency)
		projected := service.ProjectSnapshot(outcome.Snapshot, rate, currency)
		exportData = append(exportData, projected)
		uc.addSnapshotToTable(table, projected)
	}

	uc.console.Print(table.Render())

	if len(exportData) == 0 {
		uc.console.LogError("No provider could be loaded")
		return nil
	}

	currency, uniform := reportCurrency(exportData)
	if !uniform {
		uc.console.LogWarning("Providers report in different currencies (%s); amounts are not summed across rows",
			strings.Join(currencies(exportData), ", "))
	}

	if args.ReportName != "" {
		uc.exportSnapshots(ctx, exportData, currency, args)
	}
	return nil
}

// reportCurrency retorna a moeda comum a todos os snapshots, ou "" quando elas diferem.
func reportCurrency(data []entity.ProviderCostSnapshot) (string, bool) {
	codes := currencies(data)
	if len(codes) == 1 {
		return codes[0], true
	}
	return "", len(codes) == 0
}

func currencies(data []entity.ProviderCostSnapshot) []string {
	codes := lo.Uniq(lo.Map(data, func(s entity.ProviderCostSnapshot, _ int) string { return s.Currency }))
	sort.Strings(codes)
	return codes
}

// RunSeries exibe a série de custos de um provider no período pedido.
func (uc *DashboardUseCase) RunSeries(ctx context.Context, args *types.CLIArgs) error {
	selector, err := SelectorFromArgs(args)
	if err != nil {
		return err
	}
	granularity, err := entity.ParseGranularity(args.Granularity)
	if err != nil {
		return err
	}

	providerID, err := uc.singleProvider(ctx, args)
	if err != nil {
		return err
	}

	status := uc.console.Status(fmt.Sprintf("Loading cost data for %s...", providerID))
	snapshot, err := uc.snapshots.Load(ctx, providerID)
	status.Stop()
	if err != nil {
		return err
	}

	view := NewDetailView(ctx, snapshot, uc.loader, uc.snapshots, uc.costRepo, uc.console, DetailViewOptions{
		Granularity: granularity,
		Converter:   uc.converter,
		Currency:    args.Currency,
	})
	defer view.Close()

	if err := view.Select(selector); err != nil {
		return err
	}

	status = uc.console.Status(fmt.Sprintf("Loading %s...", strings.ToLower(selector.Label())))
	view.Wait()
	status.Stop()

	state := view.View()
	title := fmt.Sprintf("%s | %s (%s)", snapshot.ProviderName, selector.Label(), state.Range)

	if state.State == StateEmpty {
		uc.console.LogWarning("No cost data in range %s for %s", state.Range, snapshot.ProviderName)
		return nil
	}

	bars := lo.Map(state.Series, func(p entity.CostDataPoint, _ int) types.BarPoint {
		return types.BarPoint{Label: service.BucketLabel(p.Date, granularity), Cost: p.Cost}
	})
	uc.console.DisplaySeriesBars(title, state.Currency, bars)
	uc.console.LogInfo("Total: %s%.2f across %d %s bucket(s), source: %s",
		service.Symbol(state.Currency), state.Series.Total(), len(state.Series), granularity, state.Source)

	if args.ReportName != "" {
		report := repository.SeriesReport{
			ProviderID:   snapshot.ProviderID,
			ProviderName: snapshot.ProviderName,
			Period:       selector.Label(),
			Range:        state.Range,
			Granularity:  granularity,
			Currency:     state.Currency,
			Source:       string(state.Source),
			Total:        state.Series.Total(),
			Points:       state.Series,
		}
		uc.exportSeries(ctx, report, args)
	}
	return nil
}

// RunSync dispara a atualização da fonte e lista os providers que falharam.
func (uc *DashboardUseCase) RunSync(ctx context.Context, args *types.CLIArgs) error {
	providerID := ""
	if len(args.Providers) == 1 {
		providerID = args.Providers[0]
	}

	target := providerID
	if target == "" {
		target = "all providers"
	}
	status := uc.console.Status(fmt.Sprintf("Syncing %s...", target))
	result, err := uc.costRepo.TriggerSync(ctx, providerID)
	status.Stop()
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	for _, e := range result.Errors {
		uc.console.LogError("Sync failed for %s: %s", e.ProviderID, e.Error)
	}
	switch {
	case result.Success && len(result.Errors) == 0:
		uc.console.LogSuccess("Sync completed for %s", target)
	case result.Success:
		uc.console.LogWarning("Sync completed with %d error(s)", len(result.Errors))
	default:
		msg := result.Message
		if msg == "" {
			msg = "no details reported"
		}
		uc.console.LogWarning("Sync did not complete: %s", msg)
	}
	return nil
}

// SelectorFromArgs monta o seletor de período a partir de --start/--end ou --period.
func SelectorFromArgs(args *types.CLIArgs) (entity.PeriodSelector, error) {
	if args.Start != "" || args.End != "" {
		if args.Start == "" || args.End == "" {
			return entity.PeriodSelector{}, fmt.Errorf("%w: both --start and --end are required", types.ErrInvalidRange)
		}
		start, err := time.Parse(entity.DateLayout, args.Start)
		if err != nil {
			return entity.PeriodSelector{}, fmt.Errorf("invalid start date %q: %w", args.Start, err)
		}
		end, err := time.Parse(entity.DateLayout, args.End)
		if err != nil {
			return entity.PeriodSelector{}, fmt.Errorf("invalid end date %q: %w", args.End, err)
		}
		if start.After(end) {
			return entity.PeriodSelector{}, fmt.Errorf("%w (%s > %s)", types.ErrInvalidRange, args.Start, args.End)
		}
		return entity.CustomRange(start, end), nil
	}

	period := args.Period
	if period == "" {
		period = types.DefaultPeriod
	}
	return entity.ParsePeriod(period)
}

func (uc *DashboardUseCase) singleProvider(ctx context.Context, args *types.CLIArgs) (string, error) {
	providerIDs, err := uc.ResolveProviders(ctx, args)
	if err != nil {
		return "", err
	}
	if len(providerIDs) > 1 {
		if len(args.Providers) > 0 {
			uc.console.LogWarning("Several providers given; showing %s", providerIDs[0])
			return providerIDs[0], nil
		}
		return "", fmt.Errorf("%d providers available (%s); choose one with --providers",
			len(providerIDs), strings.Join(providerIDs, ", "))
	}
	return providerIDs[0], nil
}

// addSnapshotToTable adiciona uma linha com o resumo de custos do provider.
func (uc *DashboardUseCase) addSnapshotToTable(table types.TableInterface, s entity.ProviderCostSnapshot) {
	symbol := service.Symbol(s.Currency)

	changeText := ""
	if change := s.PercentChange(); change != nil {
		if *change > 0 {
			changeText = fmt.Sprintf("\n\n%s", pterm.FgRed.Sprintf("⬆ %.2f%%", *change))
		} else if *change < 0 {
			changeText = fmt.Sprintf("\n\n%s", pterm.FgGreen.Sprintf("⬇ %.2f%%", math.Abs(*change)))
		} else {
			changeText = fmt.Sprintf("\n\n%s", pterm.FgYellow.Sprintf("➡ 0.00%%"))
		}
	}

	table.AddRow(
		pterm.FgMagenta.Sprintf("%s\n%s", s.ProviderName, s.ProviderID),
		pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("%s%.2f", symbol, s.LastMonth),
		fmt.Sprintf("%s%s", pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("%s%.2f", symbol, s.CurrentMonth), changeText),
		pterm.FgCyan.Sprintf("%s%.2f", symbol, s.Forecast),
		pterm.FgGreen.Sprintf("Credits: %s%.2f\nSavings: %s%.2f", symbol, s.Credits, symbol, s.Savings),
		pterm.FgGreen.Sprint(strings.Join(FormatServiceCosts(s.Services, symbol, topServices), "\n")),
		pterm.FgYellow.Sprint(strings.Join(FormatBudgetInfo(s.Budgets, symbol), "\n\n")),
	)
}

func (uc *DashboardUseCase) addErrorToTable(table types.TableInterface, outcome SnapshotOutcome) {
	table.AddRow(
		pterm.FgMagenta.Sprint(outcome.ProviderID),
		pterm.FgRed.Sprint("Error"),
		pterm.FgRed.Sprint("Error"),
		pterm.FgRed.Sprint("N/A"),
		pterm.FgRed.Sprint("N/A"),
		pterm.FgRed.Sprintf("Failed to load provider: %s", outcome.Err),
		pterm.FgRed.Sprint("N/A"),
	)
}

// FormatServiceCosts formata os custos por serviço, do maior para o menor, com a variação
// em relação ao período anterior.
func FormatServiceCosts(services []entity.ServiceCost, symbol string, limit int) []string {
	sorted := lo.Filter(services, func(sc entity.ServiceCost, _ int) bool { return sc.Cost > 0.001 })
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost > sorted[j].Cost })

	if len(sorted) == 0 {
		return []string{"No costs associated with this provider"}
	}

	lines := []string{}
	for i, sc := range sorted {
		if limit > 0 && i == limit {
			lines = append(lines, fmt.Sprintf("... and %d more", len(sorted)-limit))
			break
		}
		line := fmt.Sprintf("%s: %s%.2f", sc.Name, symbol, sc.Cost)
		if sc.ChangePercentVsPriorPeriod != nil {
			line += fmt.Sprintf(" (%+.1f%%)", *sc.ChangePercentVsPriorPeriod)
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatBudgetInfo formata as informações do orçamento para exibição.
func FormatBudgetInfo(budgets []entity.BudgetInfo, symbol string) []string {
	budgetInfo := []string{}

	for _, budget := range budgets {
		budgetInfo = append(budgetInfo, fmt.Sprintf("%s limit: %s%.2f", budget.Name, symbol, budget.Limit))
		budgetInfo = append(budgetInfo, fmt.Sprintf("%s actual: %s%.2f (%.0f%%)", budget.Name, symbol, budget.Actual, budget.UsedPercent()))
		if budget.Forecast > 0 {
			budgetInfo = append(budgetInfo, fmt.Sprintf("%s forecast: %s%.2f", budget.Name, symbol, budget.Forecast))
		}
	}

	if len(budgetInfo) == 0 {
		budgetInfo = append(budgetInfo, "No budgets found")
	}

	return budgetInfo
}

func (uc *DashboardUseCase) exportSnapshots(ctx context.Context, data []entity.ProviderCostSnapshot, currency string, args *types.CLIArgs) {
	for _, reportType := range args.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportSnapshotsToCSV(data, currency, args.ReportName, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportSnapshotsToJSON(data, currency, args.ReportName, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportSnapshotsToPDF(data, currency, args.ReportName, args.Dir)
		default:
			uc.console.LogWarning("Unsupported report type: %s", reportType)
			continue
		}
		uc.reportExport(ctx, strings.ToUpper(reportType), path, err)
	}
}

func (uc *DashboardUseCase) exportSeries(ctx context.Context, report repository.SeriesReport, args *types.CLIArgs) {
	for _, reportType := range args.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportSeriesToCSV(report, args.ReportName, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportSeriesToJSON(report, args.ReportName, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportSeriesToPDF(report, args.ReportName, args.Dir)
		default:
			uc.console.LogWarning("Unsupported report type: %s", reportType)
			continue
		}
		uc.reportExport(ctx, strings.ToUpper(reportType), path, err)
	}
}

func (uc *DashboardUseCase) reportExport(ctx context.Context, kind, path string, err error) {
	if err != nil {
		uc.console.LogError("Failed to export to %s: %s", kind, err)
		return
	}
	uc.console.LogSuccess("Successfully exported to %s: %s", kind, path)

	if uc.uploader == nil {
		return
	}
	location, err := uc.uploader.Upload(ctx, path)
	if err != nil {
		uc.console.LogError("Failed to upload %s report: %s", kind, err)
		return
	}
	uc.console.LogSuccess("Uploaded %s report to %s", kind, location)
}
