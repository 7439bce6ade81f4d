package model

import (
	"encoding/json"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

// Value kinds.
const (
	KindNone ValueKind = iota
	KindNumber
	KindLabel
)

// Value is a resolved statistic for a region. The zero Value is "no value",
// which is distinct from Number(0).
type Value struct {
	kind  ValueKind
	num   float64
	label string
}

// None returns the "no value" sentinel.
func None() Value { return Value{} }

// Number wraps a numeric statistic such as an AQI reading or an index.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// Label wraps a qualitative statistic such as "Very High".
func Label(s string) Value { return Value{kind: KindLabel, label: s} }

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNone reports whether v is the "no value" sentinel.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Float returns the numeric payload. ok is false for labels and None.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the label payload. ok is false for numbers and None.
func (v Value) Text() (string, bool) {
	if v.kind != KindLabel {
		return "", false
	}
	return v.label, true
}

// String renders the value for tooltips and tables.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindLabel:
		return v.label
	default:
		return "N/A"
	}
}

// MarshalJSON encodes numbers as JSON numbers, labels as strings and None as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindLabel:
		return json.Marshal(v.label)
	default:
		return []byte("null"), nil
	}
}

// ValueFromJSON converts a raw JSON scalar into a Value. null, booleans,
// objects and arrays all map to None.
func ValueFromJSON(raw json.RawMessage) Value {
	if len(raw) == 0 {
		return None()
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return None()
		}
		return Label(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return None()
		}
		return Number(f)
	default:
		return None()
	}
}
