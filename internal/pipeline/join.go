package pipeline

import (
	"github.com/sells-group/state-dashboard/internal/model"
)

// JoinReport summarizes how many regions found a record.
type JoinReport struct {
	Matched []string `json:"matched"`
	Missed  []string `json:"missed"`  // regions rendered as "no data"
	Unused  []string `json:"unused"`  // record keys no region asked for
	Unnamed int      `json:"unnamed"` // regions without a name, also "no data"
}

// Join attaches to each region the first record whose key equals the region
// name. Regions without a match, or without a name, keep a nil Record. The
// input slices are not modified; calling Join again with the same inputs
// yields the same result.
func Join(regions []model.Region, records []model.Record) []model.Region {
	index := make(map[string]int, len(records))
	for i, rec := range records {
		if _, dup := index[rec.Key]; !dup {
			index[rec.Key] = i
		}
	}

	out := make([]model.Region, len(regions))
	for i, r := range regions {
		out[i] = model.Region{Name: r.Name, Geometry: r.Geometry}
		if r.Name == "" {
			continue
		}
		if idx, ok := index[r.Name]; ok {
			rec := records[idx]
			out[i].Record = &rec
		}
	}
	return out
}

// Report builds a JoinReport for already joined regions.
func Report(regions []model.Region, records []model.Record) JoinReport {
	var rep JoinReport
	used := make(map[string]bool, len(regions))
	for _, r := range regions {
		if r.Name == "" {
			rep.Unnamed++
			continue
		}
		if r.HasData() {
			rep.Matched = append(rep.Matched, r.Name)
			used[r.Name] = true
		} else {
			rep.Missed = append(rep.Missed, r.Name)
		}
	}
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if !used[rec.Key] && !seen[rec.Key] {
			rep.Unused = append(rep.Unused, rec.Key)
		}
		seen[rec.Key] = true
	}
	return rep
}
