package pipeline

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/state-dashboard/internal/model"
)

// TooltipHeader heads every tooltip.
const TooltipHeader = "India Demographics"

// TooltipPlaceholder is shown when nothing is hovered or the hovered region
// has no data.
const TooltipPlaceholder = "Hover over a state"

// Style is the per-feature style handed to the map.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fillOpacity"`
}

// BaseStyle returns the resting style for a region filled with color.
func BaseStyle(fill string) Style {
	return Style{FillColor: fill, Weight: 1, Opacity: 1, Color: "white", FillOpacity: 0.8}
}

// HighlightStyle returns the hover style for a region filled with color.
func HighlightStyle(fill string) Style {
	return Style{FillColor: fill, Weight: 3, Opacity: 1, Color: "#333", FillOpacity: 0.9}
}

// FeatureView is one region as drawn for a selection.
type FeatureView struct {
	Name    string      `json:"name"`
	Value   model.Value `json:"value"`
	HasData bool        `json:"has_data"`
	Style   Style       `json:"style"`
}

// Summary is the aggregate panel next to the map.
type Summary struct {
	Title      string  `json:"title"`
	Average    float64 `json:"average"`
	HasAverage bool    `json:"has_average"`
	Count      int     `json:"count"`
	Text       string  `json:"text"`
}

// View is everything needed to draw one selection.
type View struct {
	DatasetID string          `json:"dataset_id"`
	Selection model.Selection `json:"selection"`
	Features  []FeatureView   `json:"features"`
	Summary   Summary         `json:"summary"`
	Rows      []Row           `json:"rows"`
}

var printer = message.NewPrinter(language.English)

// NewSummary builds the summary panel for an aggregate.
func NewSummary(sel model.Selection, agg Aggregate) Summary {
	s := Summary{
		Title:      SummaryTitle(sel),
		Average:    agg.Average,
		HasAverage: agg.HasAverage,
		Count:      agg.Count,
	}
	avg := "N/A"
	if agg.HasAverage {
		avg = FormatNumber(agg.Average)
	}
	s.Text = printer.Sprintf("%s: %s across %d states", s.Title, avg, agg.Count)
	return s
}

// SummaryTitle renders "Average <Category> (<year>)". The year is omitted
// for year-less selections.
func SummaryTitle(sel model.Selection) string {
	title := "Average " + CategoryTitle(sel.Category)
	if sel.Year != 0 {
		title += " (" + strconv.Itoa(sel.Year) + ")"
	}
	return title
}

var acronyms = map[string]string{"aqi": "AQI", "gdp": "GDP", "pm25": "PM2.5"}

// CategoryTitle turns a field name such as "cost_of_living_index" or
// "costOfLiving" into display text.
func CategoryTitle(category string) string {
	words := splitWords(category)
	caser := cases.Title(language.English)
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && len(cur) > 0 && !unicode.IsUpper(cur[len(cur)-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

// FormatNumber renders a statistic with English digit grouping.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.1f", v)
}

// FormatValue renders a Value for tooltips and tables.
func FormatValue(v model.Value) string {
	if f, ok := v.Float(); ok {
		return FormatNumber(f)
	}
	return v.String()
}

// TooltipLine is one "label: value" row in a tooltip.
type TooltipLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Tooltip is the hover panel for a region.
type Tooltip struct {
	Header string        `json:"header"`
	Name   string        `json:"name,omitempty"`
	Lines  []TooltipLine `json:"lines,omitempty"`
	Empty  string        `json:"empty,omitempty"`
}

// NewTooltip builds the hover panel. A nil region, or one without data,
// yields the placeholder. Flat records list every field; time-series records
// list the fields of the selected year.
func NewTooltip(region *model.Region, sel model.Selection) Tooltip {
	tt := Tooltip{Header: TooltipHeader}
	if region == nil || !region.HasData() {
		tt.Empty = TooltipPlaceholder
		return tt
	}
	tt.Name = region.Name

	var fields map[string]model.Value
	rec := region.Record
	if rec.Kind == model.RecordFlat {
		fields = rec.Fields
	} else if slice, ok := rec.Slice(sel.Year); ok {
		fields = slice.Fields
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		tt.Lines = append(tt.Lines, TooltipLine{Label: CategoryTitle(k), Value: FormatValue(fields[k])})
	}
	return tt
}

// String renders the tooltip as plain text lines.
func (t Tooltip) String() string {
	var b strings.Builder
	b.WriteString(t.Header)
	if t.Name == "" {
		b.WriteString("\n" + t.Empty)
		return b.String()
	}
	b.WriteString("\n" + t.Name)
	for _, l := range t.Lines {
		b.WriteString("\n" + l.Label + ": " + l.Value)
	}
	return b.String()
}
