package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/geoattest/sdk-go/core/types"
)

// Domain labels for replace events.
const (
	DomainLocation = "location"
	DomainMedia    = "media"
)

// ReplaceEvent describes an overwrite of an existing registration.
// Overwrites are legal (last registration wins) but observable.
type ReplaceEvent struct {
	// Domain is DomainLocation or DomainMedia.
	Domain string
	// Key is the format identifier or MIME string that was re-registered.
	Key string
	// Previous and Replacement are the display names of the two
	// extensions involved.
	Previous    string
	Replacement string
}

// ReplaceHandler observes replace events. The default handler logs a
// warning; tests install their own to assert on overwrites.
type ReplaceHandler func(ReplaceEvent)

// Registry maps location format identifiers and media MIME strings to their
// extensions. Lookup priority for detection is registration order. All
// methods are safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	locations     map[string]LocationExtension
	locationOrder []string

	media      map[string]MediaExtension
	mediaOrder []string

	logger    *zap.Logger
	onReplace ReplaceHandler
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger replace warnings go to. Defaults to a nop
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithReplaceHandler overrides the default warn-log handler for overwrite
// events.
func WithReplaceHandler(h ReplaceHandler) Option {
	return func(r *Registry) {
		r.onReplace = h
	}
}

// New builds an empty registry. Built-in extensions are registered by the
// caller (see the extensions package), synchronously, before the registry is
// shared.
func New(opts ...Option) *Registry {
	r := &Registry{
		locations: make(map[string]LocationExtension),
		media:     make(map[string]MediaExtension),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onReplace == nil {
		r.onReplace = r.logReplace
	}
	return r
}

func (r *Registry) logReplace(ev ReplaceEvent) {
	r.logger.Warn("extension registration replaced",
		zap.String("domain", ev.Domain),
		zap.String("key", ev.Key),
		zap.String("previous", ev.Previous),
		zap.String("replacement", ev.Replacement),
	)
}

// EnsureInitialized reports when the registry is ready for lookups.
// Built-in registration happens synchronously during construction, so this
// resolves immediately; it exists so callers written against registries
// whose extension sets load asynchronously keep working, and it honors
// context cancellation.
func (r *Registry) EnsureInitialized(ctx context.Context) error {
	return ctx.Err()
}

// RegisterLocationExtension adds ext under its format identifier.
// Re-registering an identifier replaces the previous extension and emits a
// replace event; it is never an error. Registration fails only for
// malformed extensions.
func (r *Registry) RegisterLocationExtension(ext LocationExtension) error {
	if ext == nil {
		return types.NewError(types.KindInternal, "register_location_extension", "extension is nil")
	}
	id := ext.FormatID()
	if id == "" {
		return types.NewError(types.KindInternal, "register_location_extension", "extension has an empty format identifier")
	}

	var replaced *ReplaceEvent
	r.mu.Lock()
	if prev, ok := r.locations[id]; ok {
		replaced = &ReplaceEvent{
			Domain:      DomainLocation,
			Key:         id,
			Previous:    prev.DisplayName(),
			Replacement: ext.DisplayName(),
		}
	} else {
		r.locationOrder = append(r.locationOrder, id)
	}
	r.locations[id] = ext
	r.mu.Unlock()

	if replaced != nil {
		r.onReplace(*replaced)
	}
	return nil
}

// RegisterMediaExtension adds ext under every MIME string it claims.
// Per-MIME overwrites emit replace events; registration fails only for
// malformed extensions.
func (r *Registry) RegisterMediaExtension(ext MediaExtension) error {
	if ext == nil {
		return types.NewError(types.KindInternal, "register_media_extension", "extension is nil")
	}
	if ext.FormatID() == "" {
		return types.NewError(types.KindInternal, "register_media_extension", "extension has an empty format identifier")
	}
	mimes := ext.MimeTypes()
	if len(mimes) == 0 {
		return types.NewError(types.KindInternal, "register_media_extension",
			fmt.Sprintf("extension %q claims no MIME types", ext.FormatID()))
	}

	var events []ReplaceEvent
	r.mu.Lock()
	for _, mime := range mimes {
		if prev, ok := r.media[mime]; ok {
			events = append(events, ReplaceEvent{
				Domain:      DomainMedia,
				Key:         mime,
				Previous:    prev.DisplayName(),
				Replacement: ext.DisplayName(),
			})
		} else {
			r.mediaOrder = append(r.mediaOrder, mime)
		}
		r.media[mime] = ext
	}
	r.mu.Unlock()

	for _, ev := range events {
		r.onReplace(ev)
	}
	return nil
}

// LocationExtension resolves a format identifier. Compound identifiers fall
// back to their base tag: "geojson-point" resolves to the "geojson"
// extension when no extension registered the compound string itself. The
// fallback splits on the first delimiter only.
func (r *Registry) LocationExtension(id string) (LocationExtension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ext, ok := r.locations[id]; ok {
		return ext, true
	}
	if i := strings.Index(id, "-"); i > 0 {
		if ext, ok := r.locations[id[:i]]; ok {
			return ext, true
		}
	}
	return nil, false
}

// MediaExtension resolves a full MIME string. Exact match only; the media
// domain has no wildcard or fallback semantics.
func (r *Registry) MediaExtension(mime string) (MediaExtension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.media[mime]
	return ext, ok
}

// DetectLocationFormat returns the identifier of the first registered
// extension whose Validate accepts raw. Priority is registration order.
func (r *Registry) DetectLocationFormat(raw any) (string, bool) {
	for _, ext := range r.locationExtensionsInOrder() {
		if ext.Validate(raw) {
			return ext.FormatID(), true
		}
	}
	return "", false
}

// locationExtensionsInOrder snapshots the extensions under the read lock so
// Validate runs unlocked.
func (r *Registry) locationExtensionsInOrder() []LocationExtension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LocationExtension, 0, len(r.locationOrder))
	for _, id := range r.locationOrder {
		out = append(out, r.locations[id])
	}
	return out
}

// SupportedLocationFormats lists registered format identifiers in
// registration order, which is also detection priority.
func (r *Registry) SupportedLocationFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.locationOrder)
}

// SupportedMediaTypes lists registered MIME strings, sorted.
func (r *Registry) SupportedMediaTypes() []string {
	r.mu.RLock()
	out := slices.Clone(r.mediaOrder)
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}
