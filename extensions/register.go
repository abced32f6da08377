// Package extensions wires the built-in format extensions into a registry.
// Registration is explicit and per instance; nothing here touches global
// state, so embedders can assemble registries with exactly the formats
// they want.
package extensions

import (
	"fmt"

	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/extensions/dd"
	"github.com/geoattest/sdk-go/extensions/geohash"
	"github.com/geoattest/sdk-go/extensions/geojson"
	"github.com/geoattest/sdk-go/extensions/media"
	"github.com/geoattest/sdk-go/extensions/wkt"
)

// RegisterBuiltins registers every built-in location and media extension
// on r. Location registration order doubles as detection priority:
// geojson, wkt, dd, geohash.
func RegisterBuiltins(r *registry.Registry) error {
	locations := []registry.LocationExtension{
		geojson.New(),
		wkt.New(),
		dd.New(),
		geohash.New(),
	}
	for _, ext := range locations {
		if err := r.RegisterLocationExtension(ext); err != nil {
			return fmt.Errorf("registering location extension %q: %w", ext.FormatID(), err)
		}
	}
	for _, ext := range media.Builtin() {
		if err := r.RegisterMediaExtension(ext); err != nil {
			return fmt.Errorf("registering media extension %q: %w", ext.FormatID(), err)
		}
	}
	return nil
}

// NewBuiltinRegistry returns a registry preloaded with the built-in
// extensions.
func NewBuiltinRegistry(opts ...registry.Option) (*registry.Registry, error) {
	r := registry.New(opts...)
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}
