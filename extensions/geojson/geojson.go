// Package geojson implements the GeoJSON location format extension. GeoJSON
// is also the hub representation, so its ToHub/FromHub are identities over
// validated geometry.
package geojson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/core/types"
)

// FormatID is the identifier the extension registers under.
const FormatID = "geojson"

// Extension handles GeoJSON geometry objects and single-geometry Features.
// Accepted raw inputs: *geometry.Geometry, JSON strings, []byte, and
// map[string]any from pre-decoded JSON.
type Extension struct{}

var _ registry.LocationExtension = (*Extension)(nil)

func New() *Extension { return &Extension{} }

func (e *Extension) FormatID() string    { return FormatID }
func (e *Extension) DisplayName() string { return "GeoJSON" }

func (e *Extension) Variants() []string {
	return []string{"point", "multipoint", "linestring", "multilinestring", "polygon", "multipolygon"}
}

func (e *Extension) Validate(raw any) bool {
	_, err := e.coerce(raw)
	return err == nil
}

// ToCanonical serializes raw as RFC 8785 canonical JSON: sorted members, no
// insignificant whitespace, ES6 number formatting. Logically equal inputs
// yield identical bytes regardless of member order.
func (e *Extension) ToCanonical(raw any) (string, error) {
	g, err := e.coerce(raw)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encoding geometry: %w", err)
	}
	canonical, err := jcs.Transform(encoded)
	if err != nil {
		return "", fmt.Errorf("canonicalizing geometry JSON: %w", err)
	}
	return string(canonical), nil
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

// coerce normalizes any accepted input into validated geometry.
func (e *Extension) coerce(raw any) (*geometry.Geometry, error) {
	switch v := raw.(type) {
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
	case string:
		return e.decode([]byte(v))
	case []byte:
		return e.decode(v)
	case map[string]any:
		// Re-encode pre-decoded JSON and take the byte path so Feature
		// unwrapping and shape checks live in one place.
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, types.WrapFormatError(types.KindValidation, FormatID, "input is not encodable JSON", err)
		}
		return e.decode(encoded)
	default:
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("unsupported input type %T", raw))
	}
}

func (e *Extension) decode(data []byte) (*geometry.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, types.WrapFormatError(types.KindValidation, FormatID, "input is not a GeoJSON object", err)
	}

	switch probe.Type {
	case "Feature":
		var feature struct {
			Geometry *geometry.Geometry `json:"geometry"`
		}
		if err := json.Unmarshal(data, &feature); err != nil {
			return nil, types.WrapFormatError(types.KindValidation, FormatID, "decoding Feature", err)
		}
		if feature.Geometry == nil {
			return nil, types.NewFormatError(types.KindValidation, FormatID, "Feature has a null geometry")
		}
		if err := feature.Geometry.Validate(); err != nil {
			return nil, err
		}
		return feature.Geometry, nil
	case "FeatureCollection":
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			"FeatureCollection is not attestable, supply a single geometry or Feature")
	case "":
		return nil, types.NewFormatError(types.KindValidation, FormatID, "object has no type member")
	default:
		var g geometry.Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return &g, nil
	}
}
