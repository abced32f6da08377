// Package config loads SDK configuration from the environment and carries
// the chain presets for the EAS deployments GeoAttest attests against.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap/zapcore"

	"github.com/geoattest/sdk-go/core/types"
)

// EnvPrefix is prepended to every environment variable name, so Chain is
// read from GEOATTEST_CHAIN.
const EnvPrefix = "GEOATTEST_"

// DefaultIndexerURL is the public indexer serving every supported chain.
const DefaultIndexerURL = "https://api.geoattest.io"

// Config is the SDK configuration. Every field has an environment
// binding; zero values defer to chain presets where one applies.
type Config struct {
	// Chain selects a preset: sepolia, base, arbitrum, or celo.
	Chain string `env:"CHAIN" envDefault:"sepolia"`

	// ChainID overrides the preset chain ID for custom deployments.
	ChainID uint64 `env:"CHAIN_ID"`

	// EASContract overrides the preset EAS contract address.
	EASContract string `env:"EAS_CONTRACT"`

	// SchemaUID overrides the preset schema UID.
	SchemaUID string `env:"SCHEMA_UID"`

	// PrivateKey is the hex-encoded secp256k1 signing key. Optional;
	// without it the SDK can convert and query but not sign.
	PrivateKey string `env:"PRIVATE_KEY"`

	IndexerURL string `env:"INDEXER_URL"`

	// SRS is the spatial reference system stamped into attestations.
	SRS string `env:"SRS" envDefault:"EPSG:4326"`

	// GeohashPrecision is the character count geohash output is encoded
	// at, between 1 and 12.
	GeohashPrecision uint `env:"GEOHASH_PRECISION" envDefault:"9"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{Prefix: EnvPrefix})
}

// LoadFromEnvironment reads configuration from an explicit variable map
// instead of the process environment. Keys carry the GEOATTEST_ prefix.
func LoadFromEnvironment(environ map[string]string) (*Config, error) {
	return load(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, types.WrapError(types.KindConfig, "config", "parsing environment", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field consistency. It is called by Load; callers
// assembling a Config by hand should call it themselves.
func (c *Config) Validate() error {
	if _, ok := PresetFor(c.Chain); !ok && c.ChainID == 0 {
		return types.NewError(types.KindConfig, "config",
			fmt.Sprintf("unknown chain %q and no explicit chain id, supported chains: %s",
				c.Chain, supportedChainList()))
	}
	if c.EASContract != "" && !common.IsHexAddress(c.EASContract) {
		return types.NewError(types.KindConfig, "config",
			fmt.Sprintf("EAS contract %q is not a hex address", c.EASContract))
	}
	if c.SchemaUID != "" && len(common.FromHex(c.SchemaUID)) != common.HashLength {
		return types.NewError(types.KindConfig, "config",
			fmt.Sprintf("schema UID %q is not a 32 byte hex value", c.SchemaUID))
	}
	if c.IndexerURL != "" {
		parsed, err := url.Parse(c.IndexerURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return types.NewError(types.KindConfig, "config",
				fmt.Sprintf("indexer URL %q is not a valid http(s) URL", c.IndexerURL))
		}
	}
	if c.GeohashPrecision < 1 || c.GeohashPrecision > 12 {
		return types.NewError(types.KindConfig, "config",
			fmt.Sprintf("geohash precision must be between 1 and 12, got %d", c.GeohashPrecision))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return types.WrapError(types.KindConfig, "config",
			fmt.Sprintf("invalid log level %q", c.LogLevel), err)
	}
	return nil
}

// ResolvedChainID returns the explicit chain ID when set, otherwise the
// preset's.
func (c *Config) ResolvedChainID() uint64 {
	if c.ChainID != 0 {
		return c.ChainID
	}
	if preset, ok := PresetFor(c.Chain); ok {
		return preset.ChainID
	}
	return 0
}

// ResolvedEASContract returns the explicit contract when set, otherwise
// the preset's.
func (c *Config) ResolvedEASContract() common.Address {
	if c.EASContract != "" {
		return common.HexToAddress(c.EASContract)
	}
	if preset, ok := PresetFor(c.Chain); ok {
		return preset.EASContract
	}
	return common.Address{}
}

// ResolvedSchemaUID returns the explicit schema UID when set, otherwise
// the preset's.
func (c *Config) ResolvedSchemaUID() common.Hash {
	if c.SchemaUID != "" {
		return common.HexToHash(c.SchemaUID)
	}
	if preset, ok := PresetFor(c.Chain); ok {
		return preset.SchemaUID
	}
	return common.Hash{}
}

// ResolvedIndexerURL returns the explicit indexer URL when set, otherwise
// DefaultIndexerURL.
func (c *Config) ResolvedIndexerURL() string {
	if c.IndexerURL != "" {
		return c.IndexerURL
	}
	return DefaultIndexerURL
}

// ZapLevel parses LogLevel. Validate has already ensured it parses.
func (c *Config) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
