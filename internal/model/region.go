// Package model defines the regions, demographic records and selections that
// flow through the dashboard pipeline.
package model

import (
	"maps"
	"slices"
	"time"

	"github.com/twpayne/go-geom"
)

// RecordKind tags the shape of a demographic record.
type RecordKind string

// Record kinds.
const (
	RecordFlat       RecordKind = "flat"
	RecordTimeSeries RecordKind = "time_series"
)

// YearSlice holds one year of statistics for a region.
type YearSlice struct {
	Year   int
	Fields map[string]Value
}

// Field returns the named statistic, or None when absent.
func (s YearSlice) Field(name string) Value {
	return s.Fields[name]
}

// Record is a demographic record: either a flat set of static fields or an
// ordered time series of yearly slices.
type Record struct {
	Key    string
	Kind   RecordKind
	Fields map[string]Value // flat records only
	Slices []YearSlice      // time-series records only, document order
}

// NewFlatRecord builds a flat record keyed by name.
func NewFlatRecord(key string, fields map[string]Value) Record {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Record{Key: key, Kind: RecordFlat, Fields: fields}
}

// NewTimeSeriesRecord builds a time-series record keyed by state.
func NewTimeSeriesRecord(key string, ys []YearSlice) Record {
	return Record{Key: key, Kind: RecordTimeSeries, Slices: ys}
}

// Slice returns the first slice for the given year.
func (r Record) Slice(year int) (YearSlice, bool) {
	for _, s := range r.Slices {
		if s.Year == year {
			return s, true
		}
	}
	return YearSlice{}, false
}

// WithField returns a copy of a flat record with one field replaced. The
// receiver's field map is not modified.
func (r Record) WithField(name string, v Value) Record {
	fields := make(map[string]Value, len(r.Fields)+1)
	for k, val := range r.Fields {
		fields[k] = val
	}
	fields[name] = v
	r.Fields = fields
	return r
}

// Region is a named geographic unit with an optional demographic attachment.
// A nil Record means no matching record was found.
type Region struct {
	Name     string
	Geometry geom.T
	Record   *Record
}

// HasData reports whether the region carries a demographic attachment.
func (r Region) HasData() bool { return r.Record != nil }

// Dataset is an immutable snapshot of joined regions. Enrichment produces a
// new Dataset rather than patching one in place.
type Dataset struct {
	ID       string
	LoadedAt time.Time
	Regions  []Region
	Records  []Record
}

// Region looks up a region by name.
func (d *Dataset) Region(name string) (Region, bool) {
	for _, r := range d.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// attached returns the loaded records followed by the records attached to
// regions. Enrichment patches only the attached copies.
func (d *Dataset) attached() []Record {
	recs := make([]Record, 0, len(d.Records)+len(d.Regions))
	recs = append(recs, d.Records...)
	for _, r := range d.Regions {
		if r.Record != nil {
			recs = append(recs, *r.Record)
		}
	}
	return recs
}

// Years returns the distinct years present across all time-series records in
// ascending order.
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, rec := range d.attached() {
		for _, s := range rec.Slices {
			if !seen[s.Year] {
				seen[s.Year] = true
				years = append(years, s.Year)
			}
		}
	}
	slices.Sort(years)
	return years
}

// Categories returns the distinct field names present across all records,
// including fields added to attached records by enrichment, in first-seen
// order.
func (d *Dataset) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	add := func(fields map[string]Value) {
		for _, k := range slices.Sorted(maps.Keys(fields)) {
			if !seen[k] {
				seen[k] = true
				cats = append(cats, k)
			}
		}
	}
	for _, rec := range d.attached() {
		add(rec.Fields)
		for _, s := range rec.Slices {
			add(s.Fields)
		}
	}
	return cats
}
