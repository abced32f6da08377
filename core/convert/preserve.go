package convert

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/types"
)

// CompareOrdinates compares two flattened ordinate streams elementwise and
// reports every disagreement as a warning. A length mismatch (a dropped
// elevation, a quantized cell) yields an ordinate-count warning; the
// overlapping prefix is still compared.
func CompareOrdinates(src, dst []float64) []types.ConversionWarning {
	var warns []types.ConversionWarning
	if len(src) != len(dst) {
		warns = append(warns, types.ConversionWarning{
			Code:     types.WarnOrdinateCount,
			Ordinate: -1,
			Detail:   fmt.Sprintf("source has %d ordinates, converted output has %d", len(src), len(dst)),
		})
	}
	n := min(len(src), len(dst))
	for i := 0; i < n; i++ {
		if src[i] != dst[i] {
			warns = append(warns, types.ConversionWarning{
				Code:      types.WarnValueDrift,
				Ordinate:  i,
				Source:    geometry.FormatOrdinate(src[i]),
				Converted: geometry.FormatOrdinate(dst[i]),
				Detail:    fmt.Sprintf("ordinate %d changed from %s to %s", i, geometry.FormatOrdinate(src[i]), geometry.FormatOrdinate(dst[i])),
			})
		}
	}
	return warns
}

// CompareLiterals compares ordinate literals as arbitrary-precision
// decimals. It reports a representation warning where the decimals differ,
// which catches textual precision beyond what float64 round-trips, e.g. an
// input of "37.77490000000000012345" serialized as "37.7749000000000001".
// Indexes present in skip (already flagged for value drift) are omitted, as
// are literals that fail to parse.
func CompareLiterals(src, dst []string, skip map[int]bool) []types.ConversionWarning {
	var warns []types.ConversionWarning
	n := min(len(src), len(dst))
	for i := 0; i < n; i++ {
		if skip[i] {
			continue
		}
		a, _, err := apd.NewFromString(src[i])
		if err != nil {
			continue
		}
		b, _, err := apd.NewFromString(dst[i])
		if err != nil {
			continue
		}
		if a.Cmp(b) != 0 {
			warns = append(warns, types.ConversionWarning{
				Code:      types.WarnRepresentation,
				Ordinate:  i,
				Source:    src[i],
				Converted: dst[i],
				Detail:    fmt.Sprintf("ordinate %d literal %s is not exactly representable, serialized as %s", i, src[i], dst[i]),
			})
		}
	}
	return warns
}
