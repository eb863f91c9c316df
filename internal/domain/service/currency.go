package service

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// sanitizeRate maps non-positive, NaN and infinite rates to 1.0.
func sanitizeRate(rate float64) float64 {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 1.0
	}
	return rate
}

// Project returns a new series with every cost multiplied by rate. The input is not modified.
func Project(series entity.CostSeries, rate float64) entity.CostSeries {
	if series == nil {
		return nil
	}
	rate = sanitizeRate(rate)
	return lo.Map(series, func(p entity.CostDataPoint, _ int) entity.CostDataPoint {
		return entity.CostDataPoint{Date: p.Date, Cost: p.Cost * rate}
	})
}

// ProjectSnapshot applies Project to every monetary field of a snapshot and returns a copy.
func ProjectSnapshot(s entity.ProviderCostSnapshot, rate float64, currency string) entity.ProviderCostSnapshot {
	rate = sanitizeRate(rate)

	out := s
	out.CurrentMonth = s.CurrentMonth * rate
	out.LastMonth = s.LastMonth * rate
	out.Forecast = s.Forecast * rate
	out.Credits = s.Credits * rate
	out.Savings = s.Savings * rate
	if currency != "" {
		out.Currency = currency
	}

	out.Services = lo.Map(s.Services, func(sc entity.ServiceCost, _ int) entity.ServiceCost {
		sc.Cost *= rate
		return sc
	})
	out.Budgets = lo.Map(s.Budgets, func(b entity.BudgetInfo, _ int) entity.BudgetInfo {
		return entity.BudgetInfo{Name: b.Name, Limit: b.Limit * rate, Actual: b.Actual * rate, Forecast: b.Forecast * rate}
	})

	out.PreloadedWindows = make(map[string]entity.CostSeries, len(s.PreloadedWindows))
	for key, series := range s.PreloadedWindows {
		out.PreloadedWindows[key] = Project(series, rate)
	}
	out.AllHistorical = Project(s.AllHistorical, rate)
	return out
}

// CurrencyConverter resolves display currencies against a rate table relative to Base.
type CurrencyConverter struct {
	Base   string
	rates  map[string]float64
	logger types.Logger
}

// NewCurrencyConverter builds a converter. Codes are case-insensitive.
func NewCurrencyConverter(base string, rates map[string]float64, logger types.Logger) *CurrencyConverter {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = types.DefaultBaseCurrency
	}
	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &CurrencyConverter{Base: base, rates: normalized, logger: logger}
}

// RateFor returns the multiplier that converts amounts in from to to, and the code the
// converted amounts are in. An empty from means Base; an empty to keeps from. Rates are
// relative to Base, so other pairs use the cross rate rates[to]/rates[from]. When either
// side has no valid rate the amounts stay in from.
func (c *CurrencyConverter) RateFor(from, to string) (float64, string) {
	from = strings.ToUpper(strings.TrimSpace(from))
	if from == "" {
		from = c.Base
	}
	to = strings.ToUpper(strings.TrimSpace(to))
	if to == "" || to == from {
		return 1.0, from
	}

	fromRate, okFrom := c.rateOf(from)
	toRate, okTo := c.rateOf(to)
	if !okFrom || !okTo {
		missing := to
		if !okFrom {
			missing = from
		}
		if c.logger != nil {
			c.logger.LogWarning("No valid exchange rate for %s; showing values in %s", missing, from)
		}
		return 1.0, from
	}
	return toRate / fromRate, to
}

func (c *CurrencyConverter) rateOf(code string) (float64, bool) {
	if code == c.Base {
		return 1.0, true
	}
	rate, ok := c.rates[code]
	if !ok || sanitizeRate(rate) != rate {
		return 0, false
	}
	return rate, true
}

// Symbol returns a short prefix for amounts in code.
func Symbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "BRL":
		return "R$"
	case "JPY":
		return "¥"
	case "INR":
		return "₹"
	default:
		return strings.ToUpper(code) + " "
	}
}
