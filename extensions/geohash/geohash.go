// Package geohash implements the geohash location format extension. A
// geohash names a cell, not an exact point; decoding yields the cell
// center, so conversions out of other formats surface quantization drift
// through the preservation audit.
package geohash

import (
	"fmt"
	"strings"

	mgeohash "github.com/mmcloughlin/geohash"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/core/types"
)

// FormatID is the identifier the extension registers under.
const FormatID = "geohash"

// alphabet is the base32 character set geohashes draw from. The letters
// a, i, l and o are excluded.
const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

const (
	minPrecision = 1
	maxPrecision = 12

	// DefaultPrecision is 9 characters, a cell of roughly 5 meters.
	DefaultPrecision = 9
)

// Extension handles geohash strings. Only string input is accepted.
type Extension struct {
	precision uint
}

var _ registry.LocationExtension = (*Extension)(nil)

// New returns an extension encoding at DefaultPrecision.
func New() *Extension { return NewWithPrecision(DefaultPrecision) }

// NewWithPrecision returns an extension encoding at the given character
// count. Values outside [1, 12] are clamped.
func NewWithPrecision(chars uint) *Extension {
	return &Extension{precision: min(max(chars, minPrecision), maxPrecision)}
}

func (e *Extension) FormatID() string    { return FormatID }
func (e *Extension) DisplayName() string { return "Geohash" }
func (e *Extension) Variants() []string  { return nil }
func (e *Extension) Variant(any) string  { return "" }

func (e *Extension) Validate(raw any) bool {
	s, ok := raw.(string)
	if !ok {
		return false
	}
	return checkHash(s) == nil
}

func (e *Extension) ToCanonical(raw any) (string, error) {
	hash, err := e.coerce(raw)
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (e *Extension) ParseString(s string) (any, error) {
	return e.coerce(s)
}

func (e *Extension) ToHub(raw any) (*geometry.Geometry, error) {
	hash, err := e.coerce(raw)
	if err != nil {
		return nil, err
	}
	lat, lng := mgeohash.DecodeCenter(hash)
	return geometry.NewPoint(geometry.Position{lng, lat}), nil
}

// FromHub accepts Point geometry only. Elevation does not survive encoding
// and position is quantized to the cell grid; the conversion audit reports
// both effects as warnings.
func (e *Extension) FromHub(g *geometry.Geometry) (any, error) {
	p, ok := g.Point()
	if !ok {
		return nil, types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("geohash cannot represent %s geometry", g.Type))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return mgeohash.EncodeWithPrecision(p.Lat(), p.Lon(), e.precision), nil
}

// coerce validates raw and returns the canonical lowercase hash.
func (e *Extension) coerce(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("unsupported input type %T", raw))
	}
	hash := strings.ToLower(strings.TrimSpace(s))
	if err := checkHash(hash); err != nil {
		return "", err
	}
	return hash, nil
}

func checkHash(hash string) error {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if len(hash) < minPrecision || len(hash) > maxPrecision {
		return types.NewFormatError(types.KindValidation, FormatID,
			fmt.Sprintf("geohash length must be between %d and %d characters, got %d",
				minPrecision, maxPrecision, len(hash)))
	}
	for i, r := range hash {
		if !strings.ContainsRune(alphabet, r) {
			return types.NewFormatError(types.KindValidation, FormatID,
				fmt.Sprintf("invalid geohash character %q at index %d", r, i))
		}
	}
	return nil
}
