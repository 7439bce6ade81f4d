package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection(" 2021 ", "aqi")
	require.NoError(t, err)
	assert.Equal(t, Selection{Year: 2021, Category: "aqi"}, sel)

	sel, err = ParseSelection("", "safety")
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Year)
	assert.Equal(t, "safety", sel.Category)

	_, err = ParseSelection("twenty", "aqi")
	assert.Error(t, err)

	_, err = ParseSelection("2021", "  ")
	assert.Error(t, err)
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear("2021.0")
	require.NoError(t, err)
	assert.Equal(t, 2021, y)

	_, err = ParseYear("2021.5")
	assert.Error(t, err)
}

func TestSelection_WithersDoNotMutate(t *testing.T) {
	base := NewSelection(2020, "aqi")
	next := base.WithYear(2021).WithCategory("safety_index")

	assert.Equal(t, Selection{Year: 2020, Category: "aqi"}, base)
	assert.Equal(t, Selection{Year: 2021, Category: "safety_index"}, next)
}
