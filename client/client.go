// Package client is the top-level entry point of the GeoAttest SDK. A
// Client owns one extension registry, a converter bound to it, and the
// optional collaborators for signing, onchain registration, and indexer
// queries. Clients are safe for concurrent use; registries are never
// shared between clients.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/config"
	"github.com/geoattest/sdk-go/core/convert"
	"github.com/geoattest/sdk-go/core/eas"
	"github.com/geoattest/sdk-go/core/indexer"
	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/core/types"
	"github.com/geoattest/sdk-go/extensions"
	"github.com/geoattest/sdk-go/extensions/geohash"
	"github.com/geoattest/sdk-go/internal/metrics"
	"github.com/geoattest/sdk-go/internal/tracing"
)

// Client is one SDK instance.
type Client struct {
	chain     string
	srs       string
	registry  *registry.Registry
	converter *convert.Converter
	signer    *eas.OffchainSigner
	registrar *eas.Registrar
	indexer   *indexer.Client
	logger    *zap.Logger
	metrics   metrics.Recorder
}

type clientOptions struct {
	logger           *zap.Logger
	metrics          metrics.Recorder
	signer           *eas.OffchainSigner
	submitter        eas.Submitter
	indexerClient    *indexer.Client
	indexerURL       string
	httpClient       *http.Client
	chain            string
	srs              string
	geohashPrecision uint
	locationExts     []registry.LocationExtension
	mediaExts        []registry.MediaExtension
}

// Option adjusts client construction.
type Option func(*clientOptions)

// WithLogger sets the logger; default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. By default the client probes the
// global OpenTelemetry meter provider and falls back to a no-op recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(o *clientOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithSigner enables offchain signing.
func WithSigner(signer *eas.OffchainSigner) Option {
	return func(o *clientOptions) {
		o.signer = signer
	}
}

// WithSubmitter enables onchain registration through the given transaction
// submitter.
func WithSubmitter(submitter eas.Submitter) Option {
	return func(o *clientOptions) {
		o.submitter = submitter
	}
}

// WithIndexer sets a fully constructed indexer client.
func WithIndexer(ic *indexer.Client) Option {
	return func(o *clientOptions) {
		o.indexerClient = ic
	}
}

// WithIndexerURL enables queries against the indexer at url.
func WithIndexerURL(url string) Option {
	return func(o *clientOptions) {
		o.indexerURL = url
	}
}

// WithHTTPClient substitutes the HTTP client used for indexer queries.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithChain selects the chain preset recorded on receipts and used for
// onchain registration. Default is sepolia.
func WithChain(chain string) Option {
	return func(o *clientOptions) {
		if chain != "" {
			o.chain = chain
		}
	}
}

// WithSRS overrides the spatial reference system stamped into
// attestations.
func WithSRS(srs string) Option {
	return func(o *clientOptions) {
		if srs != "" {
			o.srs = srs
		}
	}
}

// WithGeohashPrecision re-registers the geohash extension at the given
// character count. The replacement is observable through the registry's
// replace event, like any other override.
func WithGeohashPrecision(chars uint) Option {
	return func(o *clientOptions) {
		o.geohashPrecision = chars
	}
}

// WithLocationExtension registers an additional location extension after
// the built-ins, giving it lower detection priority than them.
func WithLocationExtension(ext registry.LocationExtension) Option {
	return func(o *clientOptions) {
		o.locationExts = append(o.locationExts, ext)
	}
}

// WithMediaExtension registers an additional media extension after the
// built-ins.
func WithMediaExtension(ext registry.MediaExtension) Option {
	return func(o *clientOptions) {
		o.mediaExts = append(o.mediaExts, ext)
	}
}

// New builds a client with the built-in extensions registered.
func New(opts ...Option) (*Client, error) {
	o := clientOptions{
		logger: zap.NewNop(),
		chain:  "sepolia",
		srs:    types.DefaultSRS,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.NewRecorder(o.logger)
	}

	c := &Client{
		chain:   o.chain,
		srs:     o.srs,
		signer:  o.signer,
		logger:  o.logger,
		metrics: o.metrics,
	}

	reg, err := extensions.NewBuiltinRegistry(
		registry.WithLogger(o.logger),
		registry.WithReplaceHandler(func(ev registry.ReplaceEvent) {
			o.logger.Warn("extension registration replaced",
				zap.String("domain", ev.Domain),
				zap.String("key", ev.Key),
				zap.String("previous", ev.Previous),
				zap.String("replacement", ev.Replacement))
			c.metrics.RecordRegistryReplace(context.Background(), ev.Domain, ev.Key)
		}),
	)
	if err != nil {
		return nil, err
	}
	if o.geohashPrecision != 0 && o.geohashPrecision != geohash.DefaultPrecision {
		if err := reg.RegisterLocationExtension(geohash.NewWithPrecision(o.geohashPrecision)); err != nil {
			return nil, err
		}
	}
	for _, ext := range o.locationExts {
		if err := reg.RegisterLocationExtension(ext); err != nil {
			return nil, err
		}
	}
	for _, ext := range o.mediaExts {
		if err := reg.RegisterMediaExtension(ext); err != nil {
			return nil, err
		}
	}
	c.registry = reg
	c.converter = convert.New(reg,
		convert.WithLogger(o.logger),
		convert.WithMetrics(o.metrics))

	if o.submitter != nil {
		preset, ok := config.PresetFor(o.chain)
		if !ok {
			return nil, types.NewError(types.KindConfig, "client",
				"onchain registration needs a preset chain, got "+o.chain)
		}
		schemaUID := preset.SchemaUID
		if o.signer != nil {
			schemaUID = o.signer.SchemaUID()
		}
		c.registrar, err = eas.NewRegistrar(preset.EASContract, schemaUID, preset.Name,
			o.submitter, eas.WithRegistrarLogger(o.logger))
		if err != nil {
			return nil, err
		}
	}

	switch {
	case o.indexerClient != nil:
		c.indexer = o.indexerClient
	case o.indexerURL != "":
		indexerOpts := []indexer.ClientOption{
			indexer.WithLogger(o.logger),
			indexer.WithMetrics(o.metrics),
		}
		if o.httpClient != nil {
			indexerOpts = append(indexerOpts, indexer.WithHTTPClient(o.httpClient))
		}
		c.indexer, err = indexer.NewClient(o.indexerURL, indexerOpts...)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewFromConfig builds a client wired per cfg: signer when a private key
// is configured, indexer at the resolved URL, geohash precision applied.
// Explicit options win over configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, types.NewError(types.KindConfig, "client", "config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fromCfg := []Option{
		WithChain(cfg.Chain),
		WithSRS(cfg.SRS),
		WithGeohashPrecision(cfg.GeohashPrecision),
		WithIndexerURL(cfg.ResolvedIndexerURL()),
		WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	if cfg.PrivateKey != "" {
		signer, err := eas.NewOffchainSigner(cfg.PrivateKey, cfg.ResolvedChainID(),
			cfg.ResolvedEASContract(), cfg.ResolvedSchemaUID())
		if err != nil {
			return nil, err
		}
		fromCfg = append(fromCfg, WithSigner(signer))
	}
	return New(append(fromCfg, opts...)...)
}

// EnsureInitialized reports whether the registry is ready for lookups.
// Built-in registration is synchronous, so this only fails on a dead
// context.
func (c *Client) EnsureInitialized(ctx context.Context) error {
	return c.registry.EnsureInitialized(ctx)
}

// Chain returns the chain preset name the client was built for.
func (c *Client) Chain() string { return c.chain }

// Address returns the signer's address when signing is configured.
func (c *Client) Address() (common.Address, bool) {
	if c.signer == nil {
		return common.Address{}, false
	}
	return c.signer.Address(), true
}

// RegisterLocationExtension adds or replaces a location format extension.
func (c *Client) RegisterLocationExtension(ext registry.LocationExtension) error {
	return c.registry.RegisterLocationExtension(ext)
}

// RegisterMediaExtension adds or replaces a media extension.
func (c *Client) RegisterMediaExtension(ext registry.MediaExtension) error {
	return c.registry.RegisterMediaExtension(ext)
}

// LocationExtension looks up a location extension by format identifier,
// with compound identifiers falling back to their base format.
func (c *Client) LocationExtension(id string) (registry.LocationExtension, bool) {
	return c.registry.LocationExtension(id)
}

// MediaExtension looks up a media extension by exact MIME type.
func (c *Client) MediaExtension(mime string) (registry.MediaExtension, bool) {
	return c.registry.MediaExtension(mime)
}

// DetectLocationFormat returns the identifier of the first registered
// extension accepting raw.
func (c *Client) DetectLocationFormat(raw any) (string, bool) {
	return c.registry.DetectLocationFormat(raw)
}

// SupportedLocationFormats lists registered formats in detection order.
func (c *Client) SupportedLocationFormats() []string {
	return c.registry.SupportedLocationFormats()
}

// SupportedMediaTypes lists registered MIME types sorted.
func (c *Client) SupportedMediaTypes() []string {
	return c.registry.SupportedMediaTypes()
}

// Convert converts raw between location formats. Empty sourceFormat means
// detect; empty targetFormat means canonicalize in the source format.
func (c *Client) Convert(ctx context.Context, raw any, sourceFormat, targetFormat string) (*types.LocationPayload, error) {
	return c.converter.Convert(ctx, raw, sourceFormat, targetFormat)
}

// ValidateMedia checks data against the extension registered for mime.
func (c *Client) ValidateMedia(ctx context.Context, mime string, data []byte) error {
	ext, ok := c.registry.MediaExtension(mime)
	if !ok {
		c.metrics.RecordMediaValidated(ctx, mime, false)
		return types.NewUnsupportedMediaType("validate_media", mime, c.registry.SupportedMediaTypes())
	}
	if !ext.Validate(mime, data) {
		c.metrics.RecordMediaValidated(ctx, mime, false)
		return types.NewError(types.KindValidation, "validate_media",
			"media payload does not match declared type "+mime)
	}
	c.metrics.RecordMediaValidated(ctx, mime, true)
	return nil
}

// SignOffchain signs a into an offchain attestation. The client must have
// been built with a signer.
func (c *Client) SignOffchain(ctx context.Context, a *types.UnsignedAttestation) (*types.OffchainAttestation, error) {
	if c.signer == nil {
		return nil, types.NewError(types.KindSigning, "sign_offchain", "client has no signer configured")
	}
	ctx, end := tracing.TraceOp(ctx, tracing.OpSignOffchain)
	start := time.Now()
	att, err := c.signer.SignOffchain(ctx, a)
	end(err)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordOffchainSigned(ctx, time.Since(start))
	c.logger.Debug("attestation signed offchain",
		zap.String("uid", att.UID.Hex()),
		zap.String("attester", att.Attester.Hex()))
	return att, nil
}

// RegisterOnchain submits a to the configured chain. The client must have
// been built with a submitter.
func (c *Client) RegisterOnchain(ctx context.Context, a *types.UnsignedAttestation) (*types.OnchainReceipt, error) {
	if c.registrar == nil {
		return nil, types.NewError(types.KindRegistration, "register_onchain", "client has no submitter configured")
	}
	ctx, end := tracing.TraceOp(ctx, tracing.OpRegister)
	receipt, err := c.registrar.Attest(ctx, a)
	end(err)
	return receipt, err
}

// QueryAttestations lists indexed attestations matching filter. The client
// must have been built with an indexer.
func (c *Client) QueryAttestations(ctx context.Context, filter indexer.QueryFilter) (*indexer.ListResult, error) {
	if c.indexer == nil {
		return nil, types.NewError(types.KindIndexer, "query_attestations", "client has no indexer configured")
	}
	ctx, end := tracing.TraceOp(ctx, tracing.OpIndexerList)
	result, err := c.indexer.ListAttestations(ctx, filter)
	end(err)
	return result, err
}

// GetAttestation fetches one indexed attestation by UID.
func (c *Client) GetAttestation(ctx context.Context, uid string) (*types.AttestationRecord, error) {
	if c.indexer == nil {
		return nil, types.NewError(types.KindIndexer, "get_attestation", "client has no indexer configured")
	}
	ctx, end := tracing.TraceOp(ctx, tracing.OpIndexerGet)
	rec, err := c.indexer.GetAttestation(ctx, uid)
	end(err)
	return rec, err
}

// Watch starts a watcher delivering new attestations matching filter to
// handler. The returned watcher is already running; stop it via Stop or by
// cancelling ctx.
func (c *Client) Watch(ctx context.Context, filter indexer.QueryFilter, handler indexer.Handler, opts ...indexer.WatcherOption) (*indexer.Watcher, error) {
	if c.indexer == nil {
		return nil, types.NewError(types.KindIndexer, "watch", "client has no indexer configured")
	}
	opts = append([]indexer.WatcherOption{
		indexer.WithWatcherLogger(c.logger),
		indexer.WithWatcherMetrics(c.metrics),
	}, opts...)
	w, err := indexer.NewWatcher(c.indexer, filter, handler, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
