package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/types"
)

func TestCompareOrdinatesEqual(t *testing.T) {
	require.Empty(t, CompareOrdinates(
		[]float64{-122.4194, 37.7749},
		[]float64{-122.4194, 37.7749},
	))
	require.Empty(t, CompareOrdinates(nil, nil))
}

func TestCompareOrdinatesDrift(t *testing.T) {
	warns := CompareOrdinates(
		[]float64{-122.4194, 37.7749},
		[]float64{-122.4194, 37.775},
	)
	require.Len(t, warns, 1)
	assert.Equal(t, types.WarnValueDrift, warns[0].Code)
	assert.Equal(t, 1, warns[0].Ordinate)
	assert.Equal(t, "37.7749", warns[0].Source)
	assert.Equal(t, "37.775", warns[0].Converted)
}

func TestCompareOrdinatesCountMismatchStillComparesPrefix(t *testing.T) {
	warns := CompareOrdinates(
		[]float64{1, 2, 30},
		[]float64{1, 9},
	)
	require.Len(t, warns, 2)
	assert.Equal(t, types.WarnOrdinateCount, warns[0].Code)
	assert.Equal(t, types.WarnValueDrift, warns[1].Code)
	assert.Equal(t, 1, warns[1].Ordinate)
}

func TestCompareLiterals(t *testing.T) {
	// Same decimal value in different notations is not a finding.
	warns := CompareLiterals([]string{"1e-7"}, []string{"0.0000001"}, nil)
	require.Empty(t, warns)

	// Decimal-level difference is.
	warns = CompareLiterals(
		[]string{"37.77490000000000012345"},
		[]string{"37.7749000000000001"},
		nil,
	)
	require.Len(t, warns, 1)
	assert.Equal(t, types.WarnRepresentation, warns[0].Code)

	// Already-flagged indexes are skipped.
	warns = CompareLiterals(
		[]string{"1.5"},
		[]string{"1.0"},
		map[int]bool{0: true},
	)
	require.Empty(t, warns)

	// Unparseable literals are skipped rather than reported.
	warns = CompareLiterals([]string{"abc"}, []string{"1"}, nil)
	require.Empty(t, warns)
}
