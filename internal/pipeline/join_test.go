package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/state-dashboard/internal/model"
)

func TestJoin_FirstMatchWins(t *testing.T) {
	recs := []model.Record{
		flat("A", map[string]model.Value{"aqi": model.Number(1)}),
		flat("A", map[string]model.Value{"aqi": model.Number(2)}),
	}
	joined := Join(regions("A", "B"), recs)

	require.Len(t, joined, 2)
	require.NotNil(t, joined[0].Record)
	assert.Equal(t, model.Number(1), joined[0].Record.Fields["aqi"])
	assert.Nil(t, joined[1].Record, "no match leaves the attachment unset")
}

func TestJoin_ExactKeyEquality(t *testing.T) {
	recs := []model.Record{flat("delhi", nil), flat("Delhi ", nil)}
	joined := Join(regions("Delhi"), recs)
	assert.False(t, joined[0].HasData())
}

func TestJoin_DoesNotModifyInputs(t *testing.T) {
	in := regions("A")
	recs := []model.Record{flat("A", nil)}
	out := Join(in, recs)

	assert.Nil(t, in[0].Record)
	assert.NotNil(t, out[0].Record)
}

func TestJoin_Idempotent(t *testing.T) {
	recs := []model.Record{
		flat("A", map[string]model.Value{"x": model.Number(1)}),
		series("B", year(2020, map[string]model.Value{"x": model.Number(2)})),
	}
	first := Join(regions("A", "B", "C"), recs)
	second := Join(first, recs)

	for i := range first {
		assert.Equal(t, first[i].HasData(), second[i].HasData())
		if first[i].Record != nil {
			assert.Equal(t, *first[i].Record, *second[i].Record)
		}
	}
}

func TestJoin_EmptyInputs(t *testing.T) {
	assert.Empty(t, Join(nil, nil))
	joined := Join(regions("A"), nil)
	assert.False(t, joined[0].HasData())
}

func TestReport(t *testing.T) {
	recs := []model.Record{flat("A", nil), flat("Z", nil), flat("Z", nil)}
	joined := Join(regions("A", "B"), recs)

	rep := Report(joined, recs)
	assert.Equal(t, []string{"A"}, rep.Matched)
	assert.Equal(t, []string{"B"}, rep.Missed)
	assert.Equal(t, []string{"Z"}, rep.Unused)
}

func TestJoin_UnnamedRegionJoinsNothing(t *testing.T) {
	recs := []model.Record{flat("", map[string]model.Value{"aqi": model.Number(1)}), flat("A", nil)}
	joined := Join(regions("A", ""), recs)

	assert.True(t, joined[0].HasData())
	assert.False(t, joined[1].HasData())

	rep := Report(joined, recs)
	assert.Equal(t, []string{"A"}, rep.Matched)
	assert.Empty(t, rep.Missed)
	assert.Equal(t, 1, rep.Unnamed)
}
