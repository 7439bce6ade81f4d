package pipeline

import (
	"github.com/sells-group/state-dashboard/internal/model"
)

// Resolve extracts the statistic a selection asks for from a region.
// Rules:
//   - no attachment: None
//   - flat record: the field named by the category, year ignored
//   - time series: the field of the first slice whose year matches; a missing
//     slice, missing field or explicit null is None
func Resolve(region model.Region, sel model.Selection) model.Value {
	if region.Record == nil {
		return model.None()
	}
	rec := region.Record

	switch rec.Kind {
	case model.RecordFlat:
		return rec.Fields[sel.Category]
	case model.RecordTimeSeries:
		slice, ok := rec.Slice(sel.Year)
		if !ok {
			return model.None()
		}
		return slice.Field(sel.Category)
	default:
		return model.None()
	}
}
