package service

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
)

// Aggregate collapses a daily series into buckets of the given granularity. Each bucket is
// dated to its first day and buckets are ascending. Day and unknown granularities return
// the input unchanged.
func Aggregate(series entity.CostSeries, granularity entity.Granularity) entity.CostSeries {
	switch granularity {
	case entity.GranularityMonth:
		return bucket(series, monthStart)
	case entity.GranularityWeek:
		return bucket(series, weekStart)
	default:
		return series
	}
}

func bucket(series entity.CostSeries, keyOf func(time.Time) time.Time) entity.CostSeries {
	if len(series) == 0 {
		return entity.CostSeries{}
	}

	groups := lo.GroupBy(series, func(p entity.CostDataPoint) time.Time {
		return keyOf(p.Date)
	})

	keys := lo.Keys(groups)
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make(entity.CostSeries, 0, len(keys))
	for _, key := range keys {
		sum := decimal.Zero
		for _, p := range groups[key] {
			sum = sum.Add(decimal.NewFromFloat(p.Cost))
		}
		out = append(out, entity.CostDataPoint{Date: key, Cost: sum.InexactFloat64()})
	}
	return out
}

func monthStart(t time.Time) time.Time {
	d := entity.Day(t)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	d := entity.Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// BucketLabel formats a bucket date for charts and tables.
func BucketLabel(t time.Time, granularity entity.Granularity) string {
	switch granularity {
	case entity.GranularityMonth:
		return t.Format("Jan 2006")
	case entity.GranularityWeek:
		return "Wk " + t.Format(entity.DateLayout)
	default:
		return t.Format(entity.DateLayout)
	}
}
