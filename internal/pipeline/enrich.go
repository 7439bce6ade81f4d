package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/state-dashboard/internal/model"
	"github.com/sells-group/state-dashboard/pkg/aqi"
	"github.com/sells-group/state-dashboard/pkg/metrics"
)

// DefaultAQIField is the field live readings are written to.
const DefaultAQIField = "aqi"

// AQISource looks up a live reading for a station keyword.
type AQISource interface {
	Feed(ctx context.Context, station string) (*aqi.Reading, error)
}

// EnrichOptions configures live AQI enrichment.
type EnrichOptions struct {
	Field       string            // defaults to DefaultAQIField
	Concurrency int               // defaults to 4
	Stations    map[string]string // region name -> station keyword; keys match case-insensitively
	Metrics     metrics.Recorder
}

// EnrichmentError records a failed lookup for one region. It never aborts
// enrichment; the region's field is set to no value instead.
type EnrichmentError struct {
	Region  string
	Station string
	Err     error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s (station %s): %v", e.Region, e.Station, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// EnrichResult summarizes one enrichment pass. When Err is set the pass was
// abandoned and Dataset is the input snapshot, unchanged.
type EnrichResult struct {
	Dataset  *model.Dataset
	Updated  int
	Failures []*EnrichmentError
	Skipped  int
	Err      error
}

type lookup struct {
	index int
	value model.Value
	err   *EnrichmentError
}

// Enrich fetches a live reading for every region with a flat record and
// returns a new dataset with the field patched. Lookups run concurrently and
// independently; a failed lookup sets the field to no value. Regions without
// a flat record are skipped. ds itself is never modified. If ctx ends before
// the pass completes, no reading is applied and Err carries ctx.Err().
func Enrich(ctx context.Context, ds *model.Dataset, src AQISource, opts EnrichOptions) EnrichResult {
	if opts.Field == "" {
		opts.Field = DefaultAQIField
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	log := zap.L().With(zap.String("component", "enrich"), zap.String("dataset_id", ds.ID))

	results := make([]lookup, len(ds.Regions))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)

	skipped := 0
	for i, r := range ds.Regions {
		results[i].index = -1
		if r.Record == nil || r.Record.Kind != model.RecordFlat {
			skipped++
			rec.RecordLookup(metrics.LookupSkipped, 0)
			continue
		}
		station := stationFor(opts.Stations, r.Name)
		g.Go(func() error {
			start := time.Now()
			reading, err := src.Feed(ctx, station)
			if err != nil {
				rec.RecordLookup(metrics.LookupFailed, time.Since(start))
				results[i] = lookup{index: i, value: model.None(), err: &EnrichmentError{Region: r.Name, Station: station, Err: err}}
				return nil
			}
			rec.RecordLookup(metrics.LookupOK, time.Since(start))
			results[i] = lookup{index: i, value: model.Number(reading.AQI)}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("live aqi enrichment abandoned", zap.Error(err))
		return EnrichResult{Dataset: ds, Skipped: skipped, Err: err}
	}

	out := &model.Dataset{
		ID:       ds.ID,
		LoadedAt: ds.LoadedAt,
		Regions:  make([]model.Region, len(ds.Regions)),
		Records:  ds.Records,
	}
	copy(out.Regions, ds.Regions)

	res := EnrichResult{Dataset: out, Skipped: skipped}
	for _, l := range results {
		if l.index < 0 {
			continue
		}
		patched := out.Regions[l.index].Record.WithField(opts.Field, l.value)
		out.Regions[l.index].Record = &patched
		if l.err != nil {
			log.Warn("live aqi lookup failed",
				zap.String("region", l.err.Region),
				zap.String("station", l.err.Station),
				zap.Error(l.err.Err),
			)
			res.Failures = append(res.Failures, l.err)
			continue
		}
		res.Updated++
	}

	log.Info("live aqi enrichment complete",
		zap.Int("updated", res.Updated),
		zap.Int("failed", len(res.Failures)),
		zap.Int("skipped", res.Skipped),
	)
	return res
}

// stationFor picks the station keyword for a region. Config loaders may
// lowercase map keys, so a case-insensitive match is tried after an exact one.
func stationFor(stations map[string]string, region string) string {
	if s, ok := stations[region]; ok && s != "" {
		return s
	}
	if s, ok := stations[strings.ToLower(region)]; ok && s != "" {
		return s
	}
	return region
}
