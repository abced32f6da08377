package dd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/types"
)

func TestCanonicalFromText(t *testing.T) {
	ext := New()

	canonical, err := ext.ToCanonical("37.7749, -122.4194")
	require.NoError(t, err)
	require.Equal(t, "37.7749,-122.4194", canonical)

	// Spacing and trailing zeros normalize away.
	loose, err := ext.ToCanonical("  37.77490 ,  -122.41940  ")
	require.NoError(t, err)
	require.Equal(t, canonical, loose)
}

func TestCanonicalFromSliceUsesHubOrder(t *testing.T) {
	ext := New()

	fromSlice, err := ext.ToCanonical([]float64{-122.4194, 37.7749})
	require.NoError(t, err)
	require.Equal(t, "37.7749,-122.4194", fromSlice)

	fromArray, err := ext.ToCanonical([2]float64{-122.4194, 37.7749})
	require.NoError(t, err)
	require.Equal(t, fromSlice, fromArray)

	fromPosition, err := ext.ToCanonical(geometry.Position{-122.4194, 37.7749})
	require.NoError(t, err)
	require.Equal(t, fromSlice, fromPosition)
}

func TestParseStringReturnsHubOrderPosition(t *testing.T) {
	ext := New()

	raw, err := ext.ParseString("37.7749, -122.4194")
	require.NoError(t, err)

	pos, ok := raw.(geometry.Position)
	require.True(t, ok)
	require.Equal(t, -122.4194, pos.Lon())
	require.Equal(t, 37.7749, pos.Lat())
}

func TestToHubProducesPoint(t *testing.T) {
	ext := New()

	hub, err := ext.ToHub("37.7749, -122.4194")
	require.NoError(t, err)
	require.Equal(t, geometry.TypePoint, hub.Type)

	p, ok := hub.Point()
	require.True(t, ok)
	require.Equal(t, geometry.Position{-122.4194, 37.7749}, p)
}

func TestFromHubPointOnly(t *testing.T) {
	ext := New()

	raw, err := ext.FromHub(geometry.NewPoint(geometry.Position{-122.4194, 37.7749}))
	require.NoError(t, err)
	require.Equal(t, geometry.Position{-122.4194, 37.7749}, raw)

	ring := []geometry.Position{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	_, err = ext.FromHub(geometry.NewPolygon([][]geometry.Position{ring}))
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindValidation))
	require.Contains(t, err.Error(), "cannot represent")
}

func TestFromHubDropsElevation(t *testing.T) {
	ext := New()

	raw, err := ext.FromHub(geometry.NewPoint(geometry.Position{-122.4194, 37.7749, 12.5}))
	require.NoError(t, err)

	pos, ok := raw.(geometry.Position)
	require.True(t, ok)
	require.Len(t, pos, 2)
}

func TestValidate(t *testing.T) {
	ext := New()

	valid := []any{
		"37.7749, -122.4194",
		"37.7749,-122.4194",
		"-90, 180",
		"0,0",
		"1e-7, 2e-7",
		[]float64{-122.4194, 37.7749},
		[2]float64{-122.4194, 37.7749},
		geometry.Position{-122.4194, 37.7749},
	}
	for _, raw := range valid {
		assert.True(t, ext.Validate(raw), "expected valid: %v", raw)
	}

	invalid := []any{
		"POINT (-122.4194 37.7749)",
		`{"type":"Point","coordinates":[-122.4194,37.7749]}`,
		"91, 0",
		"0, 181",
		"abc, 12",
		"37.7749",
		"1, 2, 3",
		"NaN, 5",
		"Infinity, 0",
		", 5",
		"",
		42,
		nil,
		[]float64{1, 2, 3},
		geometry.Position{200, 0},
	}
	for _, raw := range invalid {
		assert.False(t, ext.Validate(raw), "expected invalid: %v", raw)
	}
}

func TestParseErrorsAreTyped(t *testing.T) {
	ext := New()

	_, err := ext.ParseString("abc, 12")
	require.Error(t, err)

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	require.Equal(t, types.KindValidation, typed.Kind)
	require.Equal(t, FormatID, typed.Format)
	require.Contains(t, typed.Message, "not a decimal number")
}

func TestOrdinateLiteralsHubOrder(t *testing.T) {
	ext := New()

	lits, err := ext.OrdinateLiterals("37.77490000000000012345, -122.4194")
	require.NoError(t, err)
	require.Equal(t, []string{"-122.4194", "37.77490000000000012345"}, lits)

	_, err = ext.OrdinateLiterals("only-one-part")
	require.Error(t, err)
}

func TestIdentity(t *testing.T) {
	ext := New()

	require.Equal(t, "dd", ext.FormatID())
	require.Equal(t, "Decimal Degrees", ext.DisplayName())
	require.Empty(t, ext.Variants())
	require.Empty(t, ext.Variant("anything"))
}
