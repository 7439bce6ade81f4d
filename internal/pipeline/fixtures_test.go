package pipeline

import (
	"github.com/sells-group/state-dashboard/internal/model"
)

func regions(names ...string) []model.Region {
	out := make([]model.Region, len(names))
	for i, n := range names {
		out[i] = model.Region{Name: n}
	}
	return out
}

func flat(key string, fields map[string]model.Value) model.Record {
	return model.NewFlatRecord(key, fields)
}

func series(key string, slices ...model.YearSlice) model.Record {
	return model.NewTimeSeriesRecord(key, slices)
}

func year(y int, fields map[string]model.Value) model.YearSlice {
	return model.YearSlice{Year: y, Fields: fields}
}

func dataset(regs []model.Region, recs []model.Record) *model.Dataset {
	return &model.Dataset{ID: "test", Regions: Join(regs, recs), Records: recs}
}
