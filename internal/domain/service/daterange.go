// Package service holds the pure cost-series transforms: period resolution, range
// filtering, bucket aggregation and currency projection. Nothing here does I/O.
package service

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// DaysPerMonth is the approximate month length used for relative month windows.
const DaysPerMonth = 30

// Resolve maps a selector to concrete inclusive calendar bounds relative to now.
func Resolve(sel entity.PeriodSelector, now time.Time) (entity.DateRange, error) {
	today := entity.Day(now)

	switch sel.Kind {
	case entity.PeriodFixedWindow:
		if sel.Days <= 0 {
			return entity.DateRange{}, fmt.Errorf("%w: fixed window of %d days", types.ErrInvalidPeriod, sel.Days)
		}
		return entity.DateRange{Start: today.AddDate(0, 0, -sel.Days), End: today}, nil
	case entity.PeriodRelativeMonths:
		if sel.Months <= 0 {
			return entity.DateRange{}, fmt.Errorf("%w: relative window of %d months", types.ErrInvalidPeriod, sel.Months)
		}
		return entity.DateRange{Start: today.AddDate(0, 0, -sel.Months*DaysPerMonth), End: today}, nil
	case entity.PeriodCustomRange:
		start, end := entity.Day(sel.Start), entity.Day(sel.End)
		if start.After(end) {
			return entity.DateRange{}, fmt.Errorf("%w (%s > %s)", types.ErrInvalidRange,
				start.Format(entity.DateLayout), end.Format(entity.DateLayout))
		}
		return entity.DateRange{Start: start, End: end}, nil
	}

	return entity.DateRange{}, fmt.Errorf("%w: selector kind %s", types.ErrInvalidPeriod, sel.Kind)
}

// FilterRange returns the points of series whose date lies within r. The result is never nil.
func FilterRange(series entity.CostSeries, r entity.DateRange) entity.CostSeries {
	filtered := lo.Filter(series, func(p entity.CostDataPoint, _ int) bool {
		return r.Contains(p.Date)
	})
	if filtered == nil {
		return entity.CostSeries{}
	}
	return filtered
}
