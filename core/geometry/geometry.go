// Package geometry holds the hub representation every location format
// converts through: GeoJSON-shaped geometry objects with WGS84
// longitude/latitude positions. It owns semantic validation (ordinate
// ranges, ring closure) and ordered coordinate extraction, so format
// extensions stay thin codecs.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/geoattest/sdk-go/core/types"
)

// GeometryType names a GeoJSON geometry type.
type GeometryType string

const (
	TypePoint           GeometryType = "Point"
	TypeMultiPoint      GeometryType = "MultiPoint"
	TypeLineString      GeometryType = "LineString"
	TypeMultiLineString GeometryType = "MultiLineString"
	TypePolygon         GeometryType = "Polygon"
	TypeMultiPolygon    GeometryType = "MultiPolygon"
)

// Position is a single coordinate: [longitude, latitude] or
// [longitude, latitude, elevation]. Ordinate order follows GeoJSON.
type Position []float64

// Lon returns the longitude ordinate.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude ordinate.
func (p Position) Lat() float64 { return p[1] }

// Elevation returns the third ordinate when present.
func (p Position) Elevation() (float64, bool) {
	if len(p) < 3 {
		return 0, false
	}
	return p[2], true
}

// Validate checks arity, finiteness, and WGS84 ranges.
func (p Position) Validate() error {
	if len(p) != 2 && len(p) != 3 {
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("position must have 2 or 3 ordinates, got %d", len(p)))
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.NewError(types.KindValidation, "geometry", "position ordinates must be finite")
		}
	}
	if lon := p.Lon(); lon < -180 || lon > 180 {
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("longitude %v out of range [-180, 180]", lon))
	}
	if lat := p.Lat(); lat < -90 || lat > 90 {
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("latitude %v out of range [-90, 90]", lat))
	}
	return nil
}

// Equal reports ordinate-exact equality, including arity.
func (p Position) Equal(q Position) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Geometry is one GeoJSON geometry object. Coordinates holds the shape
// matching Type: Position, []Position, [][]Position, or [][][]Position.
// GeometryCollection is intentionally unsupported; attested locations are
// single geometries.
type Geometry struct {
	Type        GeometryType
	Coordinates any
}

func NewPoint(p Position) *Geometry {
	return &Geometry{Type: TypePoint, Coordinates: p}
}

func NewMultiPoint(ps []Position) *Geometry {
	return &Geometry{Type: TypeMultiPoint, Coordinates: ps}
}

func NewLineString(ps []Position) *Geometry {
	return &Geometry{Type: TypeLineString, Coordinates: ps}
}

func NewMultiLineString(lines [][]Position) *Geometry {
	return &Geometry{Type: TypeMultiLineString, Coordinates: lines}
}

func NewPolygon(rings [][]Position) *Geometry {
	return &Geometry{Type: TypePolygon, Coordinates: rings}
}

func NewMultiPolygon(polys [][][]Position) *Geometry {
	return &Geometry{Type: TypeMultiPolygon, Coordinates: polys}
}

type geometryJSON struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// MarshalJSON emits the standard GeoJSON object form.
func (g *Geometry) MarshalJSON() ([]byte, error) {
	coords, err := json.Marshal(g.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s coordinates: %w", g.Type, err)
	}
	return json.Marshal(geometryJSON{Type: g.Type, Coordinates: coords})
}

// UnmarshalJSON decodes a GeoJSON geometry object, shaping Coordinates to
// match the declared type. Unknown members (bbox and friends) are ignored.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw geometryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding geometry object: %w", err)
	}
	if len(raw.Coordinates) == 0 {
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("geometry %q has no coordinates member", raw.Type))
	}

	decode := func(dst any) error {
		if err := json.Unmarshal(raw.Coordinates, dst); err != nil {
			return types.WrapError(types.KindValidation, "geometry",
				fmt.Sprintf("coordinates do not match geometry type %q", raw.Type), err)
		}
		return nil
	}

	switch raw.Type {
	case TypePoint:
		var p Position
		if err := decode(&p); err != nil {
			return err
		}
		g.Coordinates = p
	case TypeMultiPoint, TypeLineString:
		var ps []Position
		if err := decode(&ps); err != nil {
			return err
		}
		g.Coordinates = ps
	case TypeMultiLineString, TypePolygon:
		var nested [][]Position
		if err := decode(&nested); err != nil {
			return err
		}
		g.Coordinates = nested
	case TypeMultiPolygon:
		var nested [][][]Position
		if err := decode(&nested); err != nil {
			return err
		}
		g.Coordinates = nested
	default:
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("unsupported geometry type %q", raw.Type))
	}
	g.Type = raw.Type
	return nil
}

// Point returns the coordinates of a Point geometry.
func (g *Geometry) Point() (Position, bool) {
	p, ok := g.Coordinates.(Position)
	return p, ok && g.Type == TypePoint
}

// Validate checks the geometry's structural and semantic invariants:
// coordinate shape matches the type, every position is in range, polygon
// rings are closed with at least four positions, and linestrings have at
// least two.
func (g *Geometry) Validate() error {
	switch g.Type {
	case TypePoint:
		p, ok := g.Coordinates.(Position)
		if !ok {
			return shapeError(g)
		}
		return p.Validate()
	case TypeMultiPoint:
		ps, ok := g.Coordinates.([]Position)
		if !ok {
			return shapeError(g)
		}
		if len(ps) == 0 {
			return emptyError(g)
		}
		return validatePositions(ps)
	case TypeLineString:
		ps, ok := g.Coordinates.([]Position)
		if !ok {
			return shapeError(g)
		}
		return validateLine(ps)
	case TypeMultiLineString:
		lines, ok := g.Coordinates.([][]Position)
		if !ok {
			return shapeError(g)
		}
		if len(lines) == 0 {
			return emptyError(g)
		}
		for _, line := range lines {
			if err := validateLine(line); err != nil {
				return err
			}
		}
		return nil
	case TypePolygon:
		rings, ok := g.Coordinates.([][]Position)
		if !ok {
			return shapeError(g)
		}
		return validateRings(rings)
	case TypeMultiPolygon:
		polys, ok := g.Coordinates.([][][]Position)
		if !ok {
			return shapeError(g)
		}
		if len(polys) == 0 {
			return emptyError(g)
		}
		for _, rings := range polys {
			if err := validateRings(rings); err != nil {
				return err
			}
		}
		return nil
	default:
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("unsupported geometry type %q", g.Type))
	}
}

func shapeError(g *Geometry) error {
	return types.NewError(types.KindValidation, "geometry",
		fmt.Sprintf("coordinates do not match geometry type %q", g.Type))
}

func emptyError(g *Geometry) error {
	return types.NewError(types.KindValidation, "geometry",
		fmt.Sprintf("%s must contain at least one element", g.Type))
}

func validatePositions(ps []Position) error {
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(ps []Position) error {
	if len(ps) < 2 {
		return types.NewError(types.KindValidation, "geometry",
			fmt.Sprintf("linestring must have at least 2 positions, got %d", len(ps)))
	}
	return validatePositions(ps)
}

func validateRings(rings [][]Position) error {
	if len(rings) == 0 {
		return types.NewError(types.KindValidation, "geometry", "polygon must have at least one ring")
	}
	for _, ring := range rings {
		if len(ring) < 4 {
			return types.NewError(types.KindValidation, "geometry",
				fmt.Sprintf("polygon ring must have at least 4 positions, got %d", len(ring)))
		}
		if !ring[0].Equal(ring[len(ring)-1]) {
			return types.NewError(types.KindValidation, "geometry",
				"polygon ring is not closed: first and last positions differ")
		}
		if err := validatePositions(ring); err != nil {
			return err
		}
	}
	return nil
}

// Positions returns every position of the geometry in encounter order:
// exterior before interior rings, rings and lines in declaration order.
func (g *Geometry) Positions() []Position {
	switch c := g.Coordinates.(type) {
	case Position:
		return []Position{c}
	case []Position:
		return c
	case [][]Position:
		var out []Position
		for _, ps := range c {
			out = append(out, ps...)
		}
		return out
	case [][][]Position:
		var out []Position
		for _, nested := range c {
			for _, ps := range nested {
				out = append(out, ps...)
			}
		}
		return out
	default:
		return nil
	}
}

// FirstPosition returns the geometry's first position in encounter order.
func (g *Geometry) FirstPosition() (Position, bool) {
	ps := g.Positions()
	if len(ps) == 0 {
		return nil, false
	}
	return ps[0], true
}

// FlattenCoordinates returns the ordered ordinate stream of the geometry.
// This is the sequence coordinate-preservation checks compare.
func FlattenCoordinates(g *Geometry) []float64 {
	var out []float64
	for _, p := range g.Positions() {
		out = append(out, p...)
	}
	return out
}

// FormatOrdinate renders an ordinate in its shortest round-trip decimal
// form. Every textual format serializes ordinates through this so that
// parse/serialize cycles are byte-stable.
func FormatOrdinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
