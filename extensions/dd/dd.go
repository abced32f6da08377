// Package dd implements the decimal-degrees location format extension:
// bare WGS84 coordinate pairs, the "37.7749, -122.4194" of everyday use.
//
// Textual input reads "latitude, longitude" following the human convention;
// slice input reads [longitude, latitude] following hub order. The
// canonical string form is "lat,lon" with shortest round-trip ordinates.
package dd

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/core/types"
)

// FormatID is the identifier the extension registers under.
const FormatID = "dd"

// Extension handles decimal-degree points. Accepted raw inputs: strings,
// []float64 and [2]float64 in hub order, and geometry.Position.
type Extension struct{}

var _ registry.LocationExtension = (*Extension)(nil)
var _ registry.OrdinateLiteraler = (*Extension)(nil)

func New() *Extension { return &Extension{} }

func (e *Extension) FormatID() string    { return FormatID }
func (e *Extension) DisplayName() string { return "Decimal Degrees" }
func (e *Extension) Variants() []string  { return nil }
func (e *Extension) Variant(any) string  { return "" }

func (e *Extension) Validate(raw any) bool {
	_, err := e.coerce(raw)
	return err == nil
}

func (e *Extension) ToCanonical(raw any) (string, error) {
	pos, err := e.coerce(raw)
	if err != nil {
		return "", err
	}
	return geometry.FormatOrdinate(pos.Lat()) + "," + geometry.FormatOrdinate(pos.Lon()), nil
}

func (e *Extension) ParseString(s string) (any, error) {
	return e.coerce(s)
}

func (e *Extension) ToHub(raw any) (*geometry.Geometry, error) {
	pos, err := e.coerce(raw)
	if err != nil {
		return nil, err
	}
	return geometry.NewPoint(pos), nil
}

// FromHub accepts Point geometry only; decimal degrees cannot express other
// shapes. A third ordinate is dropped, which the conversion audit surfaces
// as an ordinate-count warning.
func (e *Extension) FromHub(g *geometry.Geometry) (any, error) {
	p, ok := g.Point()
	if !ok {
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("decimal degrees cannot represent %s geometry", g.Type))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return geometry.Position{p.Lon(), p.Lat()}, nil
}

// OrdinateLiterals returns the two literals of a textual pair in hub order
// (longitude first), unparsed.
func (e *Extension) OrdinateLiterals(s string) ([]string, error) {
	latLit, lonLit, err := splitPair(s)
	if err != nil {
		return nil, err
	}
	return []string{lonLit, latLit}, nil
}

func (e *Extension) coerce(raw any) (geometry.Position, error) {
	switch v := raw.(type) {
	case string:
		return parsePair(v)
	case geometry.Position:
		return validated(v)
	case []float64:
		return validated(geometry.Position(v))
	case [2]float64:
		return validated(geometry.Position{v[0], v[1]})
	default:
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("unsupported input type %T", raw))
	}
}

func validated(pos geometry.Position) (geometry.Position, error) {
	if len(pos) != 2 {
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("decimal degrees take exactly 2 ordinates, got %d", len(pos)))
	}
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	return pos, nil
}

func splitPair(s string) (latLit, lonLit string, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("expected \"lat, lon\", got %d comma-separated parts", len(parts)))
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// parsePair reads "lat, lon" text. Literals go through arbitrary-precision
// decimal parsing first, so non-numeric text and decimal NaN/Infinity are
// rejected before float conversion.
func parsePair(s string) (geometry.Position, error) {
	latLit, lonLit, err := splitPair(s)
	if err != nil {
		return nil, err
	}
	lat, err := parseOrdinate(latLit)
	if err != nil {
		return nil, err
	}
	lon, err := parseOrdinate(lonLit)
	if err != nil {
		return nil, err
	}
	return validated(geometry.Position{lon, lat})
}

func parseOrdinate(lit string) (float64, error) {
	if lit == "" {
		return 0, types.NewFormatError(types.KindValidation, FormatID, "empty ordinate")
	}
	d, _, err := apd.NewFromString(lit)
	if err != nil {
		return 0, types.WrapFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("ordinate %q is not a decimal number", lit), err)
	}
	if d.Form != apd.Finite {
		return 0, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("ordinate %q is not finite", lit))
	}
	v, err := d.Float64()
	if err != nil {
		return 0, types.WrapFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("ordinate %q does not fit a float64", lit), err)
	}
	return v, nil
}
