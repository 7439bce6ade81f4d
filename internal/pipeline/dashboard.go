package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/geo"
	"github.com/sells-group/state-dashboard/internal/loader"
	"github.com/sells-group/state-dashboard/internal/model"
	"github.com/sells-group/state-dashboard/pkg/metrics"
)

// Assemble joins freshly loaded documents into a new dataset snapshot.
func Assemble(docs *loader.Documents) *model.Dataset {
	ds := &model.Dataset{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Regions:  Join(docs.Regions, docs.Records),
		Records:  docs.Records,
	}

	rep := Report(ds.Regions, ds.Records)
	zap.L().Info("pipeline: dataset assembled",
		zap.String("dataset_id", ds.ID),
		zap.Int("regions", len(ds.Regions)),
		zap.Int("records", len(ds.Records)),
		zap.Int("matched", len(rep.Matched)),
		zap.Int("missed", len(rep.Missed)),
	)
	if len(rep.Missed) > 0 {
		zap.L().Debug("pipeline: regions without a record", zap.Strings("regions", rep.Missed))
	}
	return ds
}

// Dashboard holds the current dataset snapshot and draws views from it.
// Readers always see a complete snapshot; Replace swaps snapshots atomically.
type Dashboard struct {
	classifier *geo.Classifier
	metrics    metrics.Recorder
	current    atomic.Pointer[model.Dataset]
}

// NewDashboard creates a dashboard serving ds. A nil classifier uses the
// built-in color rules; a nil recorder discards metrics.
func NewDashboard(ds *model.Dataset, c *geo.Classifier, rec metrics.Recorder) *Dashboard {
	if c == nil {
		c = geo.DefaultClassifier()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	d := &Dashboard{classifier: c, metrics: rec}
	d.Replace(ds)
	return d
}

// Snapshot returns the current dataset. Callers must not modify it.
func (d *Dashboard) Snapshot() *model.Dataset {
	return d.current.Load()
}

// Replace publishes a new snapshot.
func (d *Dashboard) Replace(ds *model.Dataset) {
	d.current.Store(ds)

	joined := 0
	for _, r := range ds.Regions {
		if r.HasData() {
			joined++
		}
	}
	d.metrics.SetRegionCoverage(joined, len(ds.Regions)-joined)
}

// Classifier returns the color rules in use.
func (d *Dashboard) Classifier() *geo.Classifier { return d.classifier }

// Redraw derives a complete view for sel from the current snapshot. Nothing
// is cached between calls.
func (d *Dashboard) Redraw(sel model.Selection) View {
	return d.Draw(d.Snapshot(), sel)
}

// Draw derives a view for sel from a specific snapshot. Features are in
// region order, so callers holding ds can pair them with geometries.
func (d *Dashboard) Draw(ds *model.Dataset, sel model.Selection) View {
	start := time.Now()

	features := make([]FeatureView, len(ds.Regions))
	for i, r := range ds.Regions {
		v := Resolve(r, sel)
		features[i] = FeatureView{
			Name:    r.Name,
			Value:   v,
			HasData: r.HasData(),
			Style:   BaseStyle(d.classifier.Color(sel.Category, v)),
		}
	}

	agg := Summarize(ds.Regions, sel)
	view := View{
		DatasetID: ds.ID,
		Selection: sel,
		Features:  features,
		Summary:   NewSummary(sel, agg),
		Rows:      agg.Rows,
	}

	d.metrics.RecordRedraw(sel.Category, time.Since(start))
	return view
}

// Tooltip builds the hover panel for a region by name. ok is false when
// the current snapshot has no such region.
func (d *Dashboard) Tooltip(name string, sel model.Selection) (Tooltip, bool) {
	r, ok := d.Snapshot().Region(name)
	if !ok {
		return NewTooltip(nil, sel), false
	}
	return NewTooltip(&r, sel), true
}
