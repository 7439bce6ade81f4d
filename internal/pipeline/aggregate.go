package pipeline

import (
	"math"
	"sort"

	"github.com/sells-group/state-dashboard/internal/model"
)

// Row is one line of the ranked table.
type Row struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Aggregate is the summary of resolved values for one selection. Count
// includes labels; Average and Rows cover numbers only.
type Aggregate struct {
	Count      int     `json:"count"`
	Average    float64 `json:"average"`
	HasAverage bool    `json:"has_average"`
	Rows       []Row   `json:"rows"`
}

// Summarize resolves the selection across all regions and aggregates the
// results. Every region with a value counts; only numbers feed the mean and
// the rows. None is excluded from all three. Rows are sorted by value
// descending; ties keep region order.
func Summarize(regions []model.Region, sel model.Selection) Aggregate {
	var agg Aggregate
	var sum float64
	numeric := 0

	for _, r := range regions {
		v := Resolve(r, sel)
		if v.IsNone() {
			continue
		}
		agg.Count++
		f, ok := v.Float()
		if !ok {
			continue
		}
		numeric++
		sum += f
		agg.Rows = append(agg.Rows, Row{Name: r.Name, Value: f})
	}

	if numeric > 0 {
		agg.Average = roundTenth(sum / float64(numeric))
		agg.HasAverage = true
	}

	sort.SliceStable(agg.Rows, func(i, j int) bool {
		return agg.Rows[i].Value > agg.Rows[j].Value
	})
	return agg
}

// roundTenth rounds half away from zero to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
