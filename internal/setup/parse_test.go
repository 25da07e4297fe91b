package setup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroReply(t *testing.T) string {
	t.Helper()
	raw, err := Marshal(Setup{})
	require.NoError(t, err)
	return string(raw)
}

func TestParseZeroSetup(t *testing.T) {
	s, err := Parse("  \n" + zeroReply(t) + "\n ")
	require.NoError(t, err)
	assert.Equal(t, Setup{}, s)
}

func TestParseVerbatimValues(t *testing.T) {
	want := Setup{Summary: "Stabil hátsó", Electronics: Electronics{TractionControl1: 3, ECUMap: "2 (Race)"}}
	want.Tyres.TyrePressures.FrontLeft = 26.7
	want.Aero.RideHeight = Axle{Front: 48, Rear: 66}
	raw, err := Marshal(want)
	require.NoError(t, err)

	got, err := Parse(string(raw))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseRejectsNonJSON(t *testing.T) {
	_, err := Parse("not json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestParseRejectsIncomplete(t *testing.T) {
	_, err := Parse(`{"summary":"x","tyres":{"tyreCompound":"Dry"}}`)
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Contains(t, inc.Problems, "tyres.tyrePressures: missing")
	assert.Contains(t, inc.Problems, "electronics: missing")
	assert.NotContains(t, inc.Problems, "summary: missing")
}

func TestParseRejectsWrongLeafType(t *testing.T) {
	raw := zeroReply(t)
	// abs is the only field serialized as "abs": 0
	raw = replaceOnce(t, raw, `"abs": 0`, `"abs": "high"`)
	_, err := Parse(raw)
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, []string{"electronics.abs: expected number, got string"}, inc.Problems)
}

func TestParseRejectsTopLevelArray(t *testing.T) {
	_, err := Parse(`[]`)
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, []string{"$: expected object, got array"}, inc.Problems)
}

func TestParseStripsCodeFence(t *testing.T) {
	s, err := Parse("```json\n" + zeroReply(t) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, Setup{}, s)
}

func TestParseIgnoresUnknownFields(t *testing.T) {
	raw := replaceOnce(t, zeroReply(t), `"summary": ""`, `"summary": "", "notes": ["x"]`)
	_, err := Parse(raw)
	require.NoError(t, err)
}
