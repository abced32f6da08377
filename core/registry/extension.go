// Package registry implements the per-instance extension registry that
// location formats and media handlers plug into. A registry is always owned
// by a single SDK client; there is no process-wide instance.
package registry

import (
	"github.com/geoattest/sdk-go/core/geometry"
)

// LocationExtension is the contract every location format plugs in through.
// Implementations are stateless codecs between their own representation and
// the hub geometry; the converter composes two of them for any pairwise
// conversion.
type LocationExtension interface {
	// FormatID is the base identifier the extension registers under,
	// e.g. "geojson". Unique within the location domain.
	FormatID() string

	DisplayName() string

	// Variants lists the compound suffixes the format distinguishes,
	// e.g. "point", "polygon". Empty for formats without variants.
	Variants() []string

	// Validate reports whether raw is well-formed for this format. It
	// must be cheap and must not panic on foreign input; detection calls
	// it against arbitrary values.
	Validate(raw any) bool

	// ToCanonical serializes raw into the format's canonical string.
	// Logically equal inputs yield byte-identical output.
	ToCanonical(raw any) (string, error)

	// ParseString is the inverse of ToCanonical for strings the format
	// accepts (canonical or not).
	ParseString(canonical string) (any, error)

	// ToHub converts raw into hub geometry.
	ToHub(raw any) (*geometry.Geometry, error)

	// FromHub converts hub geometry into the format's representation.
	FromHub(g *geometry.Geometry) (any, error)

	// Variant names the compound suffix for a concrete value, e.g.
	// "point" for a GeoJSON Point, or "" when the format does not
	// distinguish variants.
	Variant(raw any) string
}

// OrdinateLiteraler is an optional capability of textual location formats:
// extracting the ordinate literals of a string in hub order, without
// parsing them into floats. The converter uses it to audit precision that
// binary floating point cannot represent.
type OrdinateLiteraler interface {
	OrdinateLiterals(s string) ([]string, error)
}

// MediaExtension validates media attachments for the MIME types it claims.
// One extension may claim many MIME strings.
type MediaExtension interface {
	// FormatID identifies the extension within the media domain,
	// e.g. "image".
	FormatID() string

	DisplayName() string

	// MimeTypes lists the full MIME strings the extension registers
	// under, e.g. "image/png".
	MimeTypes() []string

	// Validate reports whether data is plausibly of the declared MIME
	// type. Implementations sniff magic numbers; a declared type that
	// does not match the bytes fails.
	Validate(mime string, data []byte) bool
}
