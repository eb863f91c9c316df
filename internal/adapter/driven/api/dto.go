package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
)

// Dates travel as YYYY-MM-DD; longer timestamps are cut to the calendar day.

type costPointDTO struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

type serviceCostDTO struct {
	Name          string   `json:"name"`
	Cost          float64  `json:"cost"`
	ChangePercent *float64 `json:"change_percent_vs_prior_period"`
}

type budgetDTO struct {
	Name     string  `json:"name"`
	Limit    float64 `json:"limit"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast"`
}

type snapshotDTO struct {
	ProviderID       string                    `json:"provider_id"`
	ProviderName     string                    `json:"provider_name"`
	Currency         string                    `json:"currency"`
	CurrentMonth     float64                   `json:"current_month"`
	LastMonth        float64                   `json:"last_month"`
	Forecast         float64                   `json:"forecast"`
	Credits          float64                   `json:"credits"`
	Savings          float64                   `json:"savings"`
	Services         []serviceCostDTO          `json:"services"`
	Budgets          []budgetDTO               `json:"budgets"`
	PreloadedWindows map[string][]costPointDTO `json:"preloaded_windows"`
	AllHistorical    []costPointDTO            `json:"all_historical"`
}

type syncRequest struct {
	ProviderID string `json:"provider_id,omitempty"`
}

func parseDay(s string) (time.Time, bool) {
	if len(s) > len(entity.DateLayout) {
		s = s[:len(entity.DateLayout)]
	}
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// toSeries converts wire points, dropping points with unreadable dates.
func toSeries(points []costPointDTO) entity.CostSeries {
	out := make([]entity.CostDataPoint, 0, len(points))
	for _, p := range points {
		day, ok := parseDay(p.Date)
		if !ok {
			continue
		}
		out = append(out, entity.CostDataPoint{Date: day, Cost: p.Cost})
	}
	return entity.NormalizeSeries(out)
}

func (d snapshotDTO) toEntity(providerID string, loadedAt time.Time) entity.ProviderCostSnapshot {
	s := entity.ProviderCostSnapshot{
		ProviderID:   d.ProviderID,
		ProviderName: d.ProviderName,
		Currency:     d.Currency,
		CurrentMonth: d.CurrentMonth,
		LastMonth:    d.LastMonth,
		Forecast:     d.Forecast,
		Credits:      d.Credits,
		Savings:      d.Savings,
		Services: lo.Map(d.Services, func(sc serviceCostDTO, _ int) entity.ServiceCost {
			return entity.ServiceCost{Name: sc.Name, Cost: sc.Cost, ChangePercentVsPriorPeriod: sc.ChangePercent}
		}),
		Budgets: lo.Map(d.Budgets, func(b budgetDTO, _ int) entity.BudgetInfo {
			return entity.BudgetInfo{Name: b.Name, Limit: b.Limit, Actual: b.Actual, Forecast: b.Forecast}
		}),
		PreloadedWindows: make(map[string]entity.CostSeries, len(d.PreloadedWindows)),
		AllHistorical:    toSeries(d.AllHistorical),
		LoadedAt:         loadedAt,
	}
	if s.ProviderID == "" {
		s.ProviderID = providerID
	}
	for key, points := range d.PreloadedWindows {
		s.PreloadedWindows[key] = toSeries(points)
	}
	return s
}
