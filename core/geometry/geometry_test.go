package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/types"
)

func TestPositionValidate(t *testing.T) {
	tests := []struct {
		name    string
		pos     Position
		wantErr string
	}{
		{"valid 2d", Position{-122.4194, 37.7749}, ""},
		{"valid 3d", Position{-122.4194, 37.7749, 15.5}, ""},
		{"boundary lon", Position{180, 0}, ""},
		{"boundary lat", Position{0, -90}, ""},
		{"lon out of range", Position{200, 37.7749}, "longitude"},
		{"lat out of range", Position{-122.4194, 95}, "latitude"},
		{"one ordinate", Position{1}, "2 or 3 ordinates"},
		{"four ordinates", Position{1, 2, 3, 4}, "2 or 3 ordinates"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.pos.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
			require.True(t, types.IsKind(err, types.KindValidation))
		})
	}
}

func TestPolygonRingClosure(t *testing.T) {
	closed := NewPolygon([][]Position{{
		{0, 0}, {0, 1}, {1, 1}, {0, 0},
	}})
	require.NoError(t, closed.Validate())

	open := NewPolygon([][]Position{{
		{0, 0}, {0, 1}, {1, 1}, {1, 0},
	}})
	err := open.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "not closed")

	short := NewPolygon([][]Position{{
		{0, 0}, {0, 1}, {0, 0},
	}})
	err = short.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least 4 positions")
}

func TestLineStringNeedsTwoPositions(t *testing.T) {
	err := NewLineString([]Position{{0, 0}}).Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least 2 positions")

	require.NoError(t, NewLineString([]Position{{0, 0}, {1, 1}}).Validate())
}

func TestJSONRoundTrip(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[ -122.4,37.7],[-122.4,37.8],[-122.3,37.8],[-122.4,37.7]]]}`

	var g Geometry
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	require.Equal(t, TypePolygon, g.Type)
	require.NoError(t, g.Validate())

	out, err := json.Marshal(&g)
	require.NoError(t, err)

	var again Geometry
	require.NoError(t, json.Unmarshal(out, &again))
	require.Equal(t, g.Positions(), again.Positions())
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	var g Geometry
	err := json.Unmarshal([]byte(`{"type":"Circle","coordinates":[0,0]}`), &g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported geometry type")
}

func TestUnmarshalRejectsShapeMismatch(t *testing.T) {
	var g Geometry
	err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[[0,0],[1,1]]}`), &g)
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindValidation))
}

func TestFlattenCoordinatesOrder(t *testing.T) {
	g := NewMultiLineString([][]Position{
		{{1, 2}, {3, 4}},
		{{5, 6, 7}, {8, 9}},
	})
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, FlattenCoordinates(g))

	pt := NewPoint(Position{-122.4194, 37.7749})
	require.Equal(t, []float64{-122.4194, 37.7749}, FlattenCoordinates(pt))
}

func TestFirstPosition(t *testing.T) {
	g := NewMultiPolygon([][][]Position{{{
		{10, 20}, {10, 21}, {11, 21}, {10, 20},
	}}})
	first, ok := g.FirstPosition()
	require.True(t, ok)
	require.Equal(t, Position{10, 20}, first)
}

func TestFormatOrdinateShortestRoundTrip(t *testing.T) {
	require.Equal(t, "37.7749", FormatOrdinate(37.7749))
	require.Equal(t, "-122.4194", FormatOrdinate(-122.4194))
	require.Equal(t, "1", FormatOrdinate(1.0))
	require.Equal(t, "0.0000001", FormatOrdinate(0.0000001))
	require.Equal(t, "0", FormatOrdinate(0))
}
