package aws

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
)

// historyDays é o alcance do histórico carregado no snapshot.
const historyDays = 365

// GetSnapshot carrega o pacote de custos de um profile. Histórico e totais do mês são
// obrigatórios; previsão, créditos, economia, orçamentos e account id são opcionais.
func (r *CostRepositoryImpl) GetSnapshot(ctx context.Context, providerID string) (entity.ProviderCostSnapshot, error) {
	c, err := r.clientsFor(ctx, providerID)
	if err != nil {
		return entity.ProviderCostSnapshot{}, err
	}

	now := r.now().UTC()
	today := entity.Day(now)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	snapshot := entity.ProviderCostSnapshot{
		ProviderID:   providerID,
		ProviderName: providerID,
		Currency:     "USD",
		LoadedAt:     now,
	}

	var (
		history          entity.CostSeries
		current, last    map[string]float64
		currentTotal     float64
		lastTotal        float64
		remainder        float64
		credits, savings float64
		accountID        string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = getDailyCosts(gctx, c.costExplorer, today.AddDate(0, 0, -historyDays), today)
		return err
	})
	g.Go(func() error {
		var err error
		currentTotal, err = getCostForPeriod(gctx, c.costExplorer, monthStart, tomorrow, nil)
		if err != nil {
			return fmt.Errorf("failed to get current month cost: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lastTotal, err = getCostForPeriod(gctx, c.costExplorer, prevMonthStart, monthStart, nil)
		if err != nil {
			return fmt.Errorf("failed to get last month cost: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		current, err = getCostByService(gctx, c.costExplorer, monthStart, tomorrow)
		if err != nil {
			return fmt.Errorf("failed to get cost by service: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		last, _ = getCostByService(gctx, c.costExplorer, prevMonthStart, monthStart)
		return nil
	})
	g.Go(func() error {
		// Sem histórico suficiente o Cost Explorer recusa a previsão.
		if tomorrow.Before(nextMonthStart) {
			remainder, _ = getForecast(gctx, c.costExplorer, tomorrow, nextMonthStart)
		}
		return nil
	})
	g.Go(func() error {
		credits, _ = getCostForPeriod(gctx, c.costExplorer, monthStart, tomorrow, creditsFilter)
		return nil
	})
	g.Go(func() error {
		savings, _ = getSavings(gctx, c.costExplorer, monthStart, tomorrow)
		return nil
	})
	g.Go(func() error {
		accountID, _ = getAccountID(gctx, c.sts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return entity.ProviderCostSnapshot{}, fmt.Errorf("failed to load snapshot for profile %s: %w", providerID, err)
	}

	if accountID != "" {
		snapshot.ProviderName = fmt.Sprintf("%s (%s)", providerID, accountID)
		// Budgets precisa do account id.
		if budgetList, err := getBudgets(ctx, c.budgets, accountID); err == nil {
			snapshot.Budgets = budgetList
		}
	}

	snapshot.CurrentMonth = currentTotal
	snapshot.LastMonth = lastTotal
	snapshot.Forecast = currentTotal + remainder
	snapshot.Credits = math.Abs(credits)
	snapshot.Savings = savings
	snapshot.Services = serviceCosts(current, last)
	snapshot.AllHistorical = history
	snapshot.PreloadedWindows = preloadWindows(history, now)

	return snapshot, nil
}

// preloadWindows deriva as janelas fixas e relativas a partir do histórico.
func preloadWindows(history entity.CostSeries, now time.Time) map[string]entity.CostSeries {
	windows := make(map[string]entity.CostSeries, len(entity.FixedWindowDays)+len(entity.RelativeMonthCounts))

	selectors := []entity.PeriodSelector{}
	for _, days := range entity.FixedWindowDays {
		sel, _ := entity.FixedWindow(days)
		selectors = append(selectors, sel)
	}
	for _, months := range entity.RelativeMonthCounts {
		sel, _ := entity.RelativeMonths(months)
		selectors = append(selectors, sel)
	}

	for _, sel := range selectors {
		bounds, err := service.Resolve(sel, now)
		if err != nil {
			continue
		}
		windows[sel.Key()] = service.FilterRange(history, bounds)
	}
	return windows
}
