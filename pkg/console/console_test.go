package console

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

func TestBucketChange(t *testing.T) {
	prev := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		prev *float64
		cost float64
		want string
	}{
		{name: "first bucket", prev: nil, cost: 10, want: ""},
		{name: "both zero", prev: prev(0), cost: 0, want: "0%"},
		{name: "from zero", prev: prev(0), cost: 5, want: "N/A"},
		{name: "increase", prev: prev(10), cost: 15, want: "+50.00%"},
		{name: "decrease", prev: prev(10), cost: 7.5, want: "-25.00%"},
		{name: "flat", prev: prev(10), cost: 10, want: "0%"},
		{name: "huge increase", prev: prev(0.5), cost: 100, want: ">+999%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := bucketChange(tt.prev, tt.cost)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplaySeriesBars(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out bytes.Buffer
	c := NewConsoleWithWriter(&out)

	c.DisplaySeriesBars("Production | Last 4 months", "BRL", []types.BarPoint{
		{Label: "Jan 2024", Cost: 10},
		{Label: "Feb 2024", Cost: 20},
	})

	rendered := out.String()
	assert.Contains(t, rendered, "Production | Last 4 months")
	assert.Contains(t, rendered, "R$20.00")
	assert.Contains(t, rendered, "+100.00%")
}

func TestDisplaySeriesBarsAllZero(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out bytes.Buffer
	NewConsoleWithWriter(&out).DisplaySeriesBars("Empty", "USD", []types.BarPoint{{Label: "Jan 2024"}})

	assert.Contains(t, out.String(), "All costs are $0.00")
}

func TestTableRender(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	table := NewConsoleWithWriter(&bytes.Buffer{}).CreateTable()
	table.AddColumn("Provider")
	table.AddColumn("Current Month")
	table.AddRow("aws-prod", 12.5)

	rendered := table.Render()
	assert.Contains(t, rendered, "Provider")
	assert.Contains(t, rendered, "12.5")
}
