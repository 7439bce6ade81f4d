package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Selection is the user's current (year, category) choice. It is a value:
// event handlers build a new Selection instead of mutating a shared one.
type Selection struct {
	Year     int    `json:"year"`
	Category string `json:"category"`
}

// NewSelection builds a Selection from an already-normalized year.
func NewSelection(year int, category string) Selection {
	return Selection{Year: year, Category: category}
}

// ParseSelection builds a Selection from dropdown text. An empty year is
// allowed (flat datasets ignore it) and yields year 0.
func ParseSelection(yearText, category string) (Selection, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Selection{}, eris.New("selection: category is required")
	}
	yearText = strings.TrimSpace(yearText)
	if yearText == "" {
		return Selection{Category: category}, nil
	}
	year, err := ParseYear(yearText)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Year: year, Category: category}, nil
}

// WithYear returns a copy of s with the year replaced.
func (s Selection) WithYear(year int) Selection {
	s.Year = year
	return s
}

// WithCategory returns a copy of s with the category replaced.
func (s Selection) WithCategory(category string) Selection {
	s.Category = category
	return s
}

// ParseYear normalizes a year given as text. Integral floats such as "2021.0"
// are accepted since some exports write years that way.
func ParseYear(text string) (int, error) {
	text = strings.TrimSpace(text)
	if y, err := strconv.Atoi(text); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != float64(int(f)) {
		return 0, eris.Errorf("selection: invalid year %q", text)
	}
	return int(f), nil
}
