// Package wkt implements the Well-Known Text location format extension.
// The codec covers the six geometry types the hub supports, with optional Z
// ordinates. Measured (M) ordinates and EMPTY geometries are rejected.
package wkt

import (
	"fmt"
	"strings"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/core/types"
)

// FormatID is the identifier the extension registers under.
const FormatID = "wkt"

// Extension handles WKT strings. Accepted raw inputs: string and
// *geometry.Geometry (the FromHub product).
type Extension struct{}

var _ registry.LocationExtension = (*Extension)(nil)
var _ registry.OrdinateLiteraler = (*Extension)(nil)

func New() *Extension { return &Extension{} }

func (e *Extension) FormatID() string    { return FormatID }
func (e *Extension) DisplayName() string { return "Well-Known Text" }

func (e *Extension) Variants() []string {
	return []string{"point", "multipoint", "linestring", "multilinestring", "polygon", "multipolygon"}
}

func (e *Extension) Validate(raw any) bool {
	_, err := e.coerce(raw)
	return err == nil
}

// ToCanonical serializes raw in canonical WKT: upper-case keyword, single
// spaces, shortest round-trip ordinates, parenthesized multipoint members.
func (e *Extension) ToCanonical(raw any) (string, error) {
	g, err := e.coerce(raw)
	if err != nil {
		return "", err
	}
	return write(g)
}

func (e *Extension) ParseString(s string) (any, error) {
	return e.coerce(s)
}

func (e *Extension) ToHub(raw any) (*geometry.Geometry, error) {
	return e.coerce(raw)
}

func (e *Extension) FromHub(g *geometry.Geometry) (any, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (e *Extension) Variant(raw any) string {
	g, err := e.coerce(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(string(g.Type))
}

// OrdinateLiterals returns the number tokens of a WKT string in order.
// WKT ordinate order is x y (z), which is hub order.
func (e *Extension) OrdinateLiterals(s string) ([]string, error) {
	p := &parser{s: s}
	var out []string
	for {
		p.skipSpace()
		if p.done() {
			return out, nil
		}
		if isNumberStart(p.peek()) {
			tok, err := p.readNumberToken()
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			continue
		}
		p.pos++
	}
}

func (e *Extension) coerce(raw any) (*geometry.Geometry, error) {
	switch v := raw.(type) {
	case string:
		g, err := parse(v)
		if err != nil {
			return nil, err
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return g, nil
	case *geometry.Geometry:
		if v == nil {
			return nil, types.NewFormatError(types.KindValidation, FormatID, "geometry is nil")
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		return v, nil
	case geometry.Geometry:
		return e.coerce(&v)
	default:
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("unsupported input type %T", raw))
	}
}
