package loader

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/state-dashboard/internal/fetcher"
	"github.com/sells-group/state-dashboard/internal/model"
)

// Keys that identify a record's shape.
const (
	keyName  = "name"
	keyState = "state"
	keyData  = "data"
	keyYear  = "year"
)

// ParseRecords decodes the records document. Each element is tagged at
// ingestion: objects with "state" and a "data" array become time series,
// objects with "name" become flat records. Anything else is malformed.
func ParseRecords(ctx context.Context, r io.Reader) ([]model.Record, error) {
	raws, err := fetcher.DecodeJSONArray[map[string]json.RawMessage](ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: parse records")
	}

	records := make([]model.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := parseRecord(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: record %d", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(raw map[string]json.RawMessage) (model.Record, error) {
	if raw == nil {
		return model.Record{}, eris.New("record is null")
	}

	if data, ok := raw[keyData]; ok {
		key, err := stringField(raw, keyState)
		if err != nil {
			return model.Record{}, err
		}
		slices, err := parseSlices(data)
		if err != nil {
			return model.Record{}, eris.Wrapf(err, "state %q", key)
		}
		return model.NewTimeSeriesRecord(key, slices), nil
	}

	if _, ok := raw[keyName]; ok {
		key, err := stringField(raw, keyName)
		if err != nil {
			return model.Record{}, err
		}
		fields := make(map[string]model.Value, len(raw))
		for k, v := range raw {
			if k == keyName {
				continue
			}
			fields[k] = model.ValueFromJSON(v)
		}
		return model.NewFlatRecord(key, fields), nil
	}

	return model.Record{}, eris.New(`record has neither "name" nor "state"+"data"`)
}

func parseSlices(data json.RawMessage) ([]model.YearSlice, error) {
	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, eris.Wrap(err, `"data" must be an array of objects`)
	}

	slices := make([]model.YearSlice, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			return nil, eris.Errorf("slice %d is null", i)
		}
		yearRaw, ok := raw[keyYear]
		if !ok {
			return nil, eris.Errorf("slice %d has no year", i)
		}
		year, err := parseYear(yearRaw)
		if err != nil {
			return nil, eris.Wrapf(err, "slice %d", i)
		}
		fields := make(map[string]model.Value, len(raw))
		for k, v := range raw {
			if k == keyYear {
				continue
			}
			fields[k] = model.ValueFromJSON(v)
		}
		slices = append(slices, model.YearSlice{Year: year, Fields: fields})
	}
	return slices, nil
}

// parseYear normalizes a year given either as a JSON number or as a string.
func parseYear(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return model.ParseYear(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, eris.Errorf("invalid year %s", string(raw))
	}
	return model.ParseYear(strconv.FormatFloat(f, 'f', -1, 64))
}

func stringField(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", eris.Errorf("missing %q", key)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", eris.Errorf("%q must be a non-empty string", key)
	}
	return s, nil
}
