package setup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replaceOnce(t *testing.T, s, old, repl string) string {
	t.Helper()
	require.Equal(t, 1, strings.Count(s, old), "expected exactly one %q", old)
	return strings.Replace(s, old, repl, 1)
}

func TestSectionsFollowSchemaOrder(t *testing.T) {
	secs := Sections(Setup{})
	names := make([]string, 0, len(secs))
	for _, s := range secs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"summary", "tyres", "electronics", "fuelAndStrategy", "mechanicalGrip", "dampers", "aero"}, names)
	assert.Equal(t, []Field{{Path: "summary", Value: ""}}, secs[0].Fields)
	assert.Equal(t, "tyres.tyreCompound", secs[1].Fields[0].Path)
}

func TestFlattenCoversEveryLeaf(t *testing.T) {
	fields := Flatten(Setup{})
	assert.Len(t, fields, 36)
	for _, f := range fields {
		if f.Path == "summary" || f.Path == "tyres.tyreCompound" || f.Path == "electronics.ecuMap" {
			assert.Equal(t, "", f.Value, f.Path)
			continue
		}
		assert.Equal(t, "0", f.Value, f.Path)
	}
}

func TestDiffListsOnlyChangedLeaves(t *testing.T) {
	prev := Setup{}
	next := Setup{}
	next.Electronics.TractionControl1 = 3
	next.Aero.RearWing = 7.5

	changes := Diff(prev, next)
	assert.Equal(t, []Change{
		{Path: "electronics.tractionControl1", From: "0", To: "3"},
		{Path: "aero.rearWing", From: "0", To: "7.5"},
	}, changes)
	assert.Empty(t, Diff(next, next))
}

func TestUnifiedDiff(t *testing.T) {
	next := Setup{}
	next.Dampers.Bump.Front = 4

	out, err := UnifiedDiff(Setup{}, next, "r1", "r2")
	require.NoError(t, err)
	assert.Contains(t, out, "--- r1")
	assert.Contains(t, out, "+++ r2")
	assert.Contains(t, out, "-dampers.bump.front = 0")
	assert.Contains(t, out, "+dampers.bump.front = 4")

	same, err := UnifiedDiff(next, next, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "", same)
}
