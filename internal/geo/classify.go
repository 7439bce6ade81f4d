// Package geo maps resolved regional statistics to choropleth colors.
package geo

import (
	"slices"
	"strings"

	"github.com/sells-group/state-dashboard/internal/model"
)

// Classifier maps a (category, value) pair to a display color. It is
// immutable after construction and safe for concurrent use.
type Classifier struct {
	fallback string
	ladders  map[string]LadderRules
	byCat    map[string]string // category -> ladder name
	labels   map[string]string
	inverted map[string]bool
}

// NewClassifier builds a Classifier from a validated rule set. A nil rule set
// selects DefaultRules.
func NewClassifier(rules *Rules) (*Classifier, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{
		fallback: rules.Fallback,
		ladders:  make(map[string]LadderRules, len(rules.Ladders)),
		byCat:    make(map[string]string),
		labels:   make(map[string]string, len(rules.Labels.Colors)),
		inverted: make(map[string]bool, len(rules.Labels.Inverted)),
	}
	for name, lr := range rules.Ladders {
		lr.Bands = slices.Clone(lr.Bands)
		c.ladders[name] = lr
		for _, cat := range lr.Categories {
			c.byCat[cat] = name
		}
	}
	for label, color := range rules.Labels.Colors {
		c.labels[label] = color
	}
	for _, cat := range rules.Labels.Inverted {
		c.inverted[cat] = true
	}
	return c, nil
}

// DefaultClassifier returns a Classifier over the built-in rules.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(err) // built-in rules are static
	}
	return c
}

// Fallback returns the neutral color used for missing values.
func (c *Classifier) Fallback() string { return c.fallback }

// Color returns the fill color for a resolved value.
// Rules:
//   - no value: fallback grey
//   - number: the category's threshold ladder, first band strictly exceeded wins
//   - label: the qualitative table, inverted for safety-like categories
func (c *Classifier) Color(category string, v model.Value) string {
	switch v.Kind() {
	case model.KindNumber:
		f, _ := v.Float()
		return c.NumberColor(category, f)
	case model.KindLabel:
		s, _ := v.Text()
		return c.LabelColor(category, s)
	default:
		return c.fallback
	}
}

// NumberColor classifies a numeric value against the category's ladder.
// Unknown categories get the fallback color.
func (c *Classifier) NumberColor(category string, f float64) string {
	band, ok := c.Band(category, f)
	if !ok {
		return c.fallback
	}
	return band.Color
}

// Band returns the ladder band a numeric value falls into.
func (c *Classifier) Band(category string, f float64) (Band, bool) {
	name, ok := c.byCat[category]
	if !ok {
		return Band{}, false
	}
	lr := c.ladders[name]
	for _, b := range lr.Bands {
		if f > b.Above {
			return b, true
		}
	}
	return lr.Base, true
}

// LabelColor classifies a qualitative label. For inverted categories a high
// label means a safe region: "High"/"Very High" take the Low color,
// "Moderate" keeps the Moderate color and anything else takes the Very High
// color. For other categories unknown labels get the fallback color.
func (c *Classifier) LabelColor(category, label string) string {
	if c.inverted[category] {
		switch {
		case strings.Contains(label, LabelHigh):
			return c.labelOrFallback(LabelLow)
		case strings.Contains(label, LabelModerate):
			return c.labelOrFallback(LabelModerate)
		default:
			return c.labelOrFallback(LabelVeryHigh)
		}
	}
	return c.labelOrFallback(label)
}

func (c *Classifier) labelOrFallback(label string) string {
	if color, ok := c.labels[label]; ok {
		return color
	}
	return c.fallback
}

// LegendEntry is one row of a map legend.
type LegendEntry struct {
	Name  string  `json:"name"`
	Above float64 `json:"above"`
	Color string  `json:"color"`
}

// Legend returns the ladder for a category, highest band first, ending with
// the base band. ok is false for categories without a ladder.
func (c *Classifier) Legend(category string) ([]LegendEntry, bool) {
	name, ok := c.byCat[category]
	if !ok {
		return nil, false
	}
	lr := c.ladders[name]
	out := make([]LegendEntry, 0, len(lr.Bands)+1)
	for _, b := range lr.Bands {
		out = append(out, LegendEntry{Name: b.Name, Above: b.Above, Color: b.Color})
	}
	out = append(out, LegendEntry{Name: lr.Base.Name, Color: lr.Base.Color})
	return out, true
}
