package geo

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Ladder names.
const (
	LadderAQI          = "aqi"
	LadderSafety       = "safety"
	LadderCostOfLiving = "cost_of_living"
)

// FallbackColor is the neutral grey used for missing or unmatched values.
const FallbackColor = "#cccccc"

// Band is one rung of a threshold ladder. A value matches when it is strictly
// greater than Above.
type Band struct {
	Name  string  `yaml:"name" json:"name"`
	Above float64 `yaml:"above" json:"above"`
	Color string  `yaml:"color" json:"color"`
}

// LadderRules describes one category's threshold ladder.
type LadderRules struct {
	Categories []string `yaml:"categories"`
	Bands      []Band   `yaml:"bands"` // evaluated top-down
	Base       Band     `yaml:"base"`  // used when no band matches
}

// LabelRules describes the qualitative label color table.
type LabelRules struct {
	Colors   map[string]string `yaml:"colors"`
	Inverted []string          `yaml:"inverted"` // categories where high labels mean safe
}

// Rules is the full color rule set.
type Rules struct {
	Fallback string                 `yaml:"fallback"`
	Ladders  map[string]LadderRules `yaml:"ladders"`
	Labels   LabelRules             `yaml:"labels"`
}

// Label names used by the qualitative table.
const (
	LabelLow           = "Low"
	LabelLowToModerate = "Low to Moderate"
	LabelModerate      = "Moderate"
	LabelHigh          = "High"
	LabelVeryHigh      = "Very High"
	LabelDefault       = "Default"
)

// DefaultRules returns the built-in ladders and label table.
func DefaultRules() *Rules {
	return &Rules{
		Fallback: FallbackColor,
		Ladders: map[string]LadderRules{
			LadderAQI: {
				Categories: []string{"aqi", "pollution"},
				Bands: []Band{
					{Name: "hazardous", Above: 300, Color: "#7e0023"},
					{Name: "very_unhealthy", Above: 200, Color: "#8f3f97"},
					{Name: "unhealthy", Above: 150, Color: "#ff0000"},
					{Name: "unhealthy_for_sensitive", Above: 100, Color: "#ff7e00"},
					{Name: "moderate", Above: 50, Color: "#ffff00"},
				},
				Base: Band{Name: "good", Color: "#00e400"},
			},
			LadderSafety: {
				Categories: []string{"safety_index", "safety"},
				Bands: []Band{
					{Name: "very_safe", Above: 70, Color: "#1a9850"},
					{Name: "safe", Above: 50, Color: "#91cf60"},
					{Name: "moderate", Above: 40, Color: "#fee08b"},
				},
				Base: Band{Name: "unsafe", Color: "#d73027"},
			},
			LadderCostOfLiving: {
				Categories: []string{"cost_of_living_index", "costOfLiving", "cost_of_living"},
				Bands: []Band{
					{Name: "very_high", Above: 35, Color: "#d73027"},
					{Name: "high", Above: 30, Color: "#fc8d59"},
					{Name: "moderate", Above: 25, Color: "#fee08b"},
				},
				Base: Band{Name: "low", Color: "#1a9850"},
			},
		},
		Labels: LabelRules{
			Colors: map[string]string{
				LabelLow:           "#74c476",
				LabelLowToModerate: "#a1d99b",
				LabelModerate:      "#fed976",
				LabelHigh:          "#feb24c",
				LabelVeryHigh:      "#f03b20",
				LabelDefault:       "#bd0026",
			},
			Inverted: []string{"safety", "safety_index"},
		},
	}
}

// LoadRules reads a rule set from a YAML file. Sections missing from the file
// keep their built-in defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read rules %s", path)
	}

	var wrapper struct {
		Colors Rules `yaml:"colors"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "geo: parse rules")
	}

	rules := DefaultRules()
	if wrapper.Colors.Fallback != "" {
		rules.Fallback = wrapper.Colors.Fallback
	}
	for name, lr := range wrapper.Colors.Ladders {
		rules.Ladders[name] = lr
	}
	if len(wrapper.Colors.Labels.Colors) > 0 {
		rules.Labels.Colors = wrapper.Colors.Labels.Colors
	}
	if wrapper.Colors.Labels.Inverted != nil {
		rules.Labels.Inverted = wrapper.Colors.Labels.Inverted
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Validate checks that every ladder is ordered top-down and fully colored.
func (r *Rules) Validate() error {
	if r.Fallback == "" {
		return eris.New("geo: fallback color is required")
	}
	seen := make(map[string]string)
	for name, lr := range r.Ladders {
		if lr.Base.Color == "" {
			return eris.Errorf("geo: ladder %q has no base color", name)
		}
		for i, b := range lr.Bands {
			if b.Color == "" {
				return eris.Errorf("geo: ladder %q band %d has no color", name, i)
			}
			if i > 0 && b.Above >= lr.Bands[i-1].Above {
				return eris.Errorf("geo: ladder %q bands must be strictly descending (band %d)", name, i)
			}
		}
		for _, cat := range lr.Categories {
			if other, dup := seen[cat]; dup {
				return eris.Errorf("geo: category %q mapped by ladders %q and %q", cat, other, name)
			}
			seen[cat] = name
		}
	}
	return nil
}
