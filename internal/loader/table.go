package loader

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/state-dashboard/internal/model"
)

// ParseRecordTable converts a spreadsheet-style records table into records.
// The first row is the header and must name a "name" or "state" column.
// With a "year" column each row is one year slice, grouped by key in
// first-seen order; without one each row is a flat record. Empty cells are
// no value, numeric cells are numbers and anything else is a label.
func ParseRecordTable(rows [][]string) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, eris.New("loader: records table has no header")
	}

	header := make([]string, len(rows[0]))
	keyCol, yearCol := -1, -1
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		header[i] = h
		switch strings.ToLower(h) {
		case keyName, keyState:
			if keyCol < 0 {
				keyCol = i
			}
		case keyYear:
			yearCol = i
		}
	}
	if keyCol < 0 {
		return nil, eris.New(`loader: records table needs a "name" or "state" column`)
	}

	var records []model.Record
	index := make(map[string]int)

	for n, row := range rows[1:] {
		line := n + 2
		if isBlank(row) {
			continue
		}
		key := cell(row, keyCol)
		if key == "" {
			return nil, eris.Errorf("loader: records table row %d has no key", line)
		}

		fields := make(map[string]model.Value, len(header))
		for i, h := range header {
			if i == keyCol || i == yearCol || h == "" {
				continue
			}
			fields[h] = cellValue(cell(row, i))
		}

		if yearCol < 0 {
			records = append(records, model.NewFlatRecord(key, fields))
			continue
		}

		year, err := model.ParseYear(cell(row, yearCol))
		if err != nil {
			return nil, eris.Wrapf(err, "loader: records table row %d", line)
		}
		slice := model.YearSlice{Year: year, Fields: fields}
		if idx, ok := index[key]; ok {
			records[idx].Slices = append(records[idx].Slices, slice)
			continue
		}
		index[key] = len(records)
		records = append(records, model.NewTimeSeriesRecord(key, []model.YearSlice{slice}))
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellValue(s string) model.Value {
	if s == "" {
		return model.None()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return model.Number(f)
	}
	return model.Label(s)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
