package wkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/types"
)

func TestCanonicalPoint(t *testing.T) {
	ext := New()

	canonical, err := ext.ToCanonical("POINT (-122.4194 37.7749)")
	require.NoError(t, err)
	assert.Equal(t, "POINT (-122.4194 37.7749)", canonical)

	// Case and whitespace are normalized away.
	messy, err := ext.ToCanonical("  point(-122.4194    37.7749) ")
	require.NoError(t, err)
	assert.Equal(t, canonical, messy)
}

func TestCanonicalZPoint(t *testing.T) {
	ext := New()

	canonical, err := ext.ToCanonical("POINT Z (-122.4194 37.7749 15.5)")
	require.NoError(t, err)
	assert.Equal(t, "POINT Z (-122.4194 37.7749 15.5)", canonical)

	// A third ordinate without the Z keyword parses and serializes with it.
	lenient, err := ext.ToCanonical("POINT (-122.4194 37.7749 15.5)")
	require.NoError(t, err)
	assert.Equal(t, canonical, lenient)
}

func TestCanonicalCompoundGeometries(t *testing.T) {
	ext := New()

	tests := []struct {
		name  string
		in    string
		canon string
	}{
		{
			"linestring",
			"linestring(0 0,1 1,  2 2)",
			"LINESTRING (0 0, 1 1, 2 2)",
		},
		{
			"polygon",
			"POLYGON((0 0,0 1,1 1,0 0))",
			"POLYGON ((0 0, 0 1, 1 1, 0 0))",
		},
		{
			"polygon with hole",
			"POLYGON ((0 0, 0 10, 10 10, 0 0), (1 1, 1 2, 2 2, 1 1))",
			"POLYGON ((0 0, 0 10, 10 10, 0 0), (1 1, 1 2, 2 2, 1 1))",
		},
		{
			"multipoint parenthesized",
			"MULTIPOINT ((1 2), (3 4))",
			"MULTIPOINT ((1 2), (3 4))",
		},
		{
			"multipoint bare members",
			"MULTIPOINT (1 2, 3 4)",
			"MULTIPOINT ((1 2), (3 4))",
		},
		{
			"multilinestring",
			"MULTILINESTRING((0 0,1 1),(2 2,3 3))",
			"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))",
		},
		{
			"multipolygon",
			"MULTIPOLYGON(((0 0,0 1,1 1,0 0)),((5 5,5 6,6 6,5 5)))",
			"MULTIPOLYGON (((0 0, 0 1, 1 1, 0 0)), ((5 5, 5 6, 6 6, 5 5)))",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ext.ToCanonical(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.canon, got)

			// Canonical output re-parses to the same canonical form.
			again, err := ext.ToCanonical(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	ext := New()

	tests := []struct {
		name string
		in   any
	}{
		{"geojson string", `{"type":"Point","coordinates":[0,0]}`},
		{"decimal pair", "37.7749, -122.4194"},
		{"empty geometry", "POINT EMPTY"},
		{"measured", "POINT M (1 2 3)"},
		{"unknown keyword", "CIRCLE (0 0, 5)"},
		{"trailing garbage", "POINT (1 2) oops"},
		{"unclosed ring", "POLYGON ((0 0, 0 1, 1 1, 1 0))"},
		{"lon out of range", "POINT (200 37)"},
		{"missing ordinate", "POINT (1)"},
		{"not a string", 42},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, ext.Validate(tc.in))
		})
	}
}

func TestParseErrorsAreTyped(t *testing.T) {
	ext := New()

	_, err := ext.ToHub("POLYGON ((0 0, 0 1, 1 1, 1 0))")
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindValidation))
	require.Contains(t, err.Error(), "not closed")
}

func TestHubRoundTrip(t *testing.T) {
	ext := New()

	g, err := ext.ToHub("POLYGON ((0 0, 0 1, 1 1, 0 0))")
	require.NoError(t, err)
	require.Equal(t, geometry.TypePolygon, g.Type)

	back, err := ext.FromHub(g)
	require.NoError(t, err)
	canonical, err := ext.ToCanonical(back)
	require.NoError(t, err)
	assert.Equal(t, "POLYGON ((0 0, 0 1, 1 1, 0 0))", canonical)
}

func TestVariant(t *testing.T) {
	ext := New()

	assert.Equal(t, "point", ext.Variant("POINT (1 2)"))
	assert.Equal(t, "multipolygon", ext.Variant("MULTIPOLYGON (((0 0, 0 1, 1 1, 0 0)))"))
	assert.Equal(t, "", ext.Variant("bogus"))
}

func TestOrdinateLiterals(t *testing.T) {
	ext := New()

	lits, err := ext.OrdinateLiterals("POINT (-122.4194 37.7749)")
	require.NoError(t, err)
	assert.Equal(t, []string{"-122.4194", "37.7749"}, lits)

	lits, err = ext.OrdinateLiterals("LINESTRING (0 0, 1.5 2.5)")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0", "1.5", "2.5"}, lits)
}
