package entity

import "time"

// Provider is an entry of the provider list (an AWS profile, a GCP billing account, ...).
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// BudgetInfo represents a budget with actual and forecasted spend.
type BudgetInfo struct {
	Name     string  `json:"name"`
	Limit    float64 `json:"limit"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast,omitempty"`
}

// UsedPercent returns Actual as a percentage of Limit, or 0 when there is no limit.
func (b BudgetInfo) UsedPercent() float64 {
	if b.Limit <= 0 {
		return 0
	}
	return b.Actual / b.Limit * 100
}

// ProviderCostSnapshot is the cost bundle loaded once per provider when the dashboard opens.
// A reload replaces it wholesale; nothing mutates it in place.
type ProviderCostSnapshot struct {
	ProviderID       string                `json:"provider_id"`
	ProviderName     string                `json:"provider_name"`
	Currency         string                `json:"currency"`
	CurrentMonth     float64               `json:"current_month"`
	LastMonth        float64               `json:"last_month"`
	Forecast         float64               `json:"forecast"`
	Credits          float64               `json:"credits"`
	Savings          float64               `json:"savings"`
	Services         []ServiceCost         `json:"services"`
	Budgets          []BudgetInfo          `json:"budgets,omitempty"`
	PreloadedWindows map[string]CostSeries `json:"preloaded_windows"`
	AllHistorical    CostSeries            `json:"all_historical"`
	LoadedAt         time.Time             `json:"loaded_at"`
}

// PercentChange returns the month over month change of the total, following the same
// thresholds as the table renderer: nil when last month is ~0 and current month is not.
func (s ProviderCostSnapshot) PercentChange() *float64 {
	if s.LastMonth > 0.01 {
		change := (s.CurrentMonth - s.LastMonth) / s.LastMonth * 100.0
		return &change
	}
	if s.CurrentMonth < 0.01 {
		change := 0.0
		return &change
	}
	return nil
}

// Window returns the preloaded series for key, if present.
func (s ProviderCostSnapshot) Window(key string) (CostSeries, bool) {
	series, ok := s.PreloadedWindows[key]
	return series, ok
}

// ProviderSyncError is a per-provider failure reported by a sync trigger.
type ProviderSyncError struct {
	ProviderID string `json:"provider_id"`
	Error      string `json:"error"`
}

// SyncResult is the outcome of a server-side cache refresh.
type SyncResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  []ProviderSyncError `json:"errors,omitempty"`
}

// FailedFor reports whether the sync reported an error for providerID.
func (r SyncResult) FailedFor(providerID string) (string, bool) {
	for _, e := range r.Errors {
		if e.ProviderID == providerID {
			return e.Error, true
		}
	}
	return "", false
}
