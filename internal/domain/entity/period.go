package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// PeriodKind identifies which variant of PeriodSelector is active.
type PeriodKind int

const (
	PeriodUnknown PeriodKind = iota
	PeriodFixedWindow
	PeriodRelativeMonths
	PeriodCustomRange
)

func (k PeriodKind) String() string {
	switch k {
	case PeriodFixedWindow:
		return "fixed-window"
	case PeriodRelativeMonths:
		return "relative-months"
	case PeriodCustomRange:
		return "custom-range"
	default:
		return "unknown"
	}
}

// Supported selector sizes.
var (
	FixedWindowDays     = []int{30, 60, 120, 180}
	RelativeMonthCounts = []int{4, 6}
)

// PeriodSelector is the reporting period chosen by the user. Only the fields of the
// active Kind are meaningful.
type PeriodSelector struct {
	Kind   PeriodKind
	Days   int
	Months int
	Start  time.Time
	End    time.Time
}

// FixedWindow builds a selector for the last n days. n must be one of FixedWindowDays.
func FixedWindow(days int) (PeriodSelector, error) {
	for _, d := range FixedWindowDays {
		if d == days {
			return PeriodSelector{Kind: PeriodFixedWindow, Days: days}, nil
		}
	}
	return PeriodSelector{}, fmt.Errorf("%w: fixed window of %d days", types.ErrInvalidPeriod, days)
}

// RelativeMonths builds a selector for the last m months. m must be one of RelativeMonthCounts.
func RelativeMonths(months int) (PeriodSelector, error) {
	for _, m := range RelativeMonthCounts {
		if m == months {
			return PeriodSelector{Kind: PeriodRelativeMonths, Months: months}, nil
		}
	}
	return PeriodSelector{}, fmt.Errorf("%w: relative window of %d months", types.ErrInvalidPeriod, months)
}

// CustomRange builds a selector for an explicit range. Bounds are validated on resolve.
func CustomRange(start, end time.Time) PeriodSelector {
	return PeriodSelector{Kind: PeriodCustomRange, Start: Day(start), End: Day(end)}
}

// ParsePeriod accepts the tokens used by the CLI and the config file: 30d, 60d, 120d, 180d, 4m, 6m.
func ParsePeriod(token string) (PeriodSelector, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	var n int
	switch {
	case strings.HasSuffix(t, "d"):
		if _, err := fmt.Sscanf(t, "%dd", &n); err != nil {
			return PeriodSelector{}, fmt.Errorf("%w: %q", types.ErrInvalidPeriod, token)
		}
		return FixedWindow(n)
	case strings.HasSuffix(t, "m"):
		if _, err := fmt.Sscanf(t, "%dm", &n); err != nil {
			return PeriodSelector{}, fmt.Errorf("%w: %q", types.ErrInvalidPeriod, token)
		}
		return RelativeMonths(n)
	}
	return PeriodSelector{}, fmt.Errorf("%w: %q", types.ErrInvalidPeriod, token)
}

// Key identifies the selector. For fixed and relative windows it is also the key of the
// matching entry in ProviderCostSnapshot.PreloadedWindows.
func (p PeriodSelector) Key() string {
	switch p.Kind {
	case PeriodFixedWindow:
		return fmt.Sprintf("%ddays", p.Days)
	case PeriodRelativeMonths:
		return fmt.Sprintf("%dmonths", p.Months)
	case PeriodCustomRange:
		return fmt.Sprintf("custom:%s:%s", p.Start.Format(DateLayout), p.End.Format(DateLayout))
	default:
		return ""
	}
}

// Label is the human readable name shown in tables and reports.
func (p PeriodSelector) Label() string {
	switch p.Kind {
	case PeriodFixedWindow:
		return fmt.Sprintf("Last %d days", p.Days)
	case PeriodRelativeMonths:
		return fmt.Sprintf("Last %d months", p.Months)
	case PeriodCustomRange:
		return fmt.Sprintf("%s to %s", p.Start.Format(DateLayout), p.End.Format(DateLayout))
	default:
		return "Unknown period"
	}
}

// Equal reports whether two selectors describe the same period.
func (p PeriodSelector) Equal(o PeriodSelector) bool {
	return p.Kind == o.Kind && p.Key() == o.Key()
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a date within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of calendar days in the range, bounds included.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// Granularity is the bucket size used when rendering a series.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity token; empty means day.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case "", GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	case GranularityMonth:
		return GranularityMonth, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrInvalidGranularity, s)
}
