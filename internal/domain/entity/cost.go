package entity

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date layout used on the wire, in the cache and in reports.
const DateLayout = "2006-01-02"

// CostDataPoint represents the cost of one provider on one calendar day.
type CostDataPoint struct {
	Date time.Time `json:"date"`
	Cost float64   `json:"cost"`
}

// CostSeries is an ordered sequence of points, ascending by date, one point per date.
type CostSeries []CostDataPoint

// Total returns the sum of all costs in the series.
func (s CostSeries) Total() float64 {
	var total float64
	for _, p := range s {
		total += p.Cost
	}
	return total
}

// Clone returns a copy that shares nothing with s.
func (s CostSeries) Clone() CostSeries {
	if s == nil {
		return nil
	}
	out := make(CostSeries, len(s))
	copy(out, s)
	return out
}

// ServiceCost represents the cost of a single cloud service in the current period.
type ServiceCost struct {
	Name                       string   `json:"name"`
	Cost                       float64  `json:"cost"`
	ChangePercentVsPriorPeriod *float64 `json:"change_percent_vs_prior_period,omitempty"`
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MustParseDay parses a YYYY-MM-DD date and panics on error. Only for fixtures and constants.
func MustParseDay(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// NormalizeSeries truncates dates to calendar days, merges duplicate dates by summing
// and sorts ascending. Adapters call it on everything they produce.
func NormalizeSeries(points []CostDataPoint) CostSeries {
	if len(points) == 0 {
		return CostSeries{}
	}
	byDay := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDay[Day(p.Date)] += p.Cost
	}
	out := make(CostSeries, 0, len(byDay))
	for day, cost := range byDay {
		out = append(out, CostDataPoint{Date: day, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// MergeSeries combines two series; on duplicate dates the value from fresh wins.
func MergeSeries(cached, fresh CostSeries) CostSeries {
	byDay := make(map[time.Time]float64, len(cached)+len(fresh))
	for _, p := range cached {
		byDay[Day(p.Date)] = p.Cost
	}
	for _, p := range fresh {
		byDay[Day(p.Date)] = p.Cost
	}
	out := make(CostSeries, 0, len(byDay))
	for day, cost := range byDay {
		out = append(out, CostDataPoint{Date: day, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
