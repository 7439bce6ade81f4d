package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/state-dashboard/internal/model"
)

func TestStyles(t *testing.T) {
	base := BaseStyle("#1a9850")
	assert.Equal(t, Style{FillColor: "#1a9850", Weight: 1, Opacity: 1, Color: "white", FillOpacity: 0.8}, base)

	hl := HighlightStyle("#1a9850")
	assert.Equal(t, 3.0, hl.Weight)
	assert.Equal(t, "#333", hl.Color)
	assert.Equal(t, 0.9, hl.FillOpacity)
}

func TestCategoryTitle(t *testing.T) {
	tests := map[string]string{
		"aqi":                  "AQI",
		"costOfLiving":         "Cost Of Living",
		"cost_of_living_index": "Cost Of Living Index",
		"safety":               "Safety",
		"pollution":            "Pollution",
	}
	for in, want := range tests {
		assert.Equal(t, want, CategoryTitle(in), in)
	}
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(model.NewSelection(2021, "aqi"), Aggregate{Count: 2, Average: 1234.5, HasAverage: true})
	assert.Equal(t, "Average AQI (2021)", s.Title)
	assert.Equal(t, "Average AQI (2021): 1,234.5 across 2 states", s.Text)

	empty := NewSummary(model.NewSelection(0, "safety"), Aggregate{})
	assert.Equal(t, "Average Safety", empty.Title)
	assert.Equal(t, "Average Safety: N/A across 0 states", empty.Text)
	assert.False(t, empty.HasAverage)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "42", FormatValue(model.Number(42)))
	assert.Equal(t, "42.5", FormatValue(model.Number(42.5)))
	assert.Equal(t, "High", FormatValue(model.Label("High")))
	assert.Equal(t, "N/A", FormatValue(model.None()))
}

func TestNewTooltip(t *testing.T) {
	sel := model.NewSelection(2021, "aqi")

	tt := NewTooltip(nil, sel)
	assert.Equal(t, TooltipHeader, tt.Header)
	assert.Equal(t, TooltipPlaceholder, tt.Empty)
	assert.Equal(t, "India Demographics\nHover over a state", tt.String())

	noData := model.Region{Name: "Kerala"}
	assert.Equal(t, TooltipPlaceholder, NewTooltip(&noData, sel).Empty)

	rec := flat("Goa", map[string]model.Value{"safety": model.Label("High"), "costOfLiving": model.Label("Low")})
	goa := model.Region{Name: "Goa", Record: &rec}
	tt = NewTooltip(&goa, sel)
	assert.Equal(t, "Goa", tt.Name)
	assert.Equal(t, []TooltipLine{
		{Label: "Cost Of Living", Value: "Low"},
		{Label: "Safety", Value: "High"},
	}, tt.Lines)
	assert.Equal(t, "India Demographics\nGoa\nCost Of Living: Low\nSafety: High", tt.String())
}

func TestNewTooltip_TimeSeriesUsesSelectedYear(t *testing.T) {
	rec := series("Delhi",
		year(2020, map[string]model.Value{"aqi": model.Number(40)}),
		year(2021, map[string]model.Value{"aqi": model.Number(95)}),
	)
	delhi := model.Region{Name: "Delhi", Record: &rec}

	tt := NewTooltip(&delhi, model.NewSelection(2021, "aqi"))
	assert.Equal(t, []TooltipLine{{Label: "AQI", Value: "95"}}, tt.Lines)

	tt = NewTooltip(&delhi, model.NewSelection(2019, "aqi"))
	assert.Equal(t, "Delhi", tt.Name)
	assert.Empty(t, tt.Lines)
}
