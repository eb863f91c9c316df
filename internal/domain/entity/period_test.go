package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		token   string
		key     string
		label   string
		wantErr bool
	}{
		{token: "30d", key: "30days", label: "Last 30 days"},
		{token: " 180D ", key: "180days", label: "Last 180 days"},
		{token: "4m", key: "4months", label: "Last 4 months"},
		{token: "6M", key: "6months", label: "Last 6 months"},
		{token: "7d", wantErr: true},
		{token: "3m", wantErr: true},
		{token: "30days", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p, err := ParsePeriod(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, p.Key())
			assert.Equal(t, tt.label, p.Label())
		})
	}
}

func TestCustomRange_TruncatesBounds(t *testing.T) {
	p := CustomRange(MustParseDay("2024-01-01").Add(15 * time.Hour), MustParseDay("2024-01-31"))

	assert.Equal(t, PeriodCustomRange, p.Kind)
	assert.Equal(t, MustParseDay("2024-01-01"), p.Start)
	assert.Equal(t, "custom:2024-01-01:2024-01-31", p.Key())
	assert.Equal(t, "2024-01-01 to 2024-01-31", p.Label())
	assert.True(t, p.Equal(CustomRange(MustParseDay("2024-01-01"), MustParseDay("2024-01-31"))))
	assert.False(t, p.Equal(CustomRange(MustParseDay("2024-01-01"), MustParseDay("2024-01-30"))))
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: MustParseDay("2024-02-27"), End: MustParseDay("2024-03-01")}

	assert.Equal(t, 4, r.Days())
	assert.True(t, r.Contains(MustParseDay("2024-02-29").Add(23 * time.Hour)))
	assert.True(t, r.Contains(r.End))
	assert.False(t, r.Contains(MustParseDay("2024-03-02")))
	assert.Zero(t, DateRange{Start: r.End, End: r.Start}.Days())
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, GranularityDay, g)

	g, err = ParseGranularity("Month")
	require.NoError(t, err)
	assert.Equal(t, GranularityMonth, g)

	_, err = ParseGranularity("year")
	require.ErrorIs(t, err, types.ErrInvalidGranularity)
}
