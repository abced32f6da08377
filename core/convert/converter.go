// Package convert implements hub-mediated location format conversion.
// Any registered format converts to any other through the hub geometry, so
// adding a format costs one ToHub/FromHub pair instead of a pairwise matrix.
package convert

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/registry"
	"github.com/geoattest/sdk-go/core/types"
	"github.com/geoattest/sdk-go/internal/metrics"
	"github.com/geoattest/sdk-go/internal/tracing"
)

// Converter is the stateless conversion algorithm over a registry's
// extensions. Coordinate preservation findings are reported as warnings on
// the result, never as errors.
type Converter struct {
	reg     *registry.Registry
	logger  *zap.Logger
	metrics metrics.Recorder
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the converter's logger. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithMetrics sets the metrics recorder. Defaults to no-op.
func WithMetrics(rec metrics.Recorder) Option {
	return func(c *Converter) { c.metrics = rec }
}

// New builds a Converter over reg.
func New(reg *registry.Registry, opts ...Option) *Converter {
	c := &Converter{
		reg:     reg,
		logger:  zap.NewNop(),
		metrics: metrics.NewNoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert turns raw location input into a canonical string in targetFormat.
//
// An empty sourceFormat auto-detects the input against the registered
// extensions in registration order. An empty targetFormat returns the
// source format's canonical string unchanged, with no preservation audit.
// Unknown formats fail with a typed unsupported-format error naming the
// supported alternatives.
func (c *Converter) Convert(ctx context.Context, raw any, sourceFormat, targetFormat string) (*types.LocationPayload, error) {
	ctx, end := tracing.TraceOp(ctx, tracing.OpConvert)
	start := time.Now()

	result, err := c.convert(ctx, raw, sourceFormat, targetFormat)
	end(err)
	if err != nil {
		c.metrics.RecordConversionError(ctx, sourceFormat, targetFormat, metrics.ClassifyError(err))
		return nil, err
	}
	c.metrics.RecordConversion(ctx, sourceFormat, targetFormat, time.Since(start), len(result.Warnings))
	c.logger.Debug("converted location",
		zap.String("source", sourceFormat),
		zap.String("target", targetFormat),
		zap.String("location_type", result.LocationType),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (c *Converter) convert(ctx context.Context, raw any, sourceFormat, targetFormat string) (*types.LocationPayload, error) {
	if err := c.reg.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	if sourceFormat == "" {
		detected, ok := c.reg.DetectLocationFormat(raw)
		if !ok {
			c.metrics.RecordDetectionFailed(ctx)
			return nil, types.WrapError(types.KindDetection, "convert",
				fmt.Sprintf("unable to detect location format, supported formats: %v", c.reg.SupportedLocationFormats()), nil)
		}
		c.metrics.RecordFormatDetected(ctx, detected)
		sourceFormat = detected
	}

	srcExt, ok := c.reg.LocationExtension(sourceFormat)
	if !ok {
		return nil, fmt.Errorf("resolving source format: %w",
			types.NewUnsupportedFormat("convert", sourceFormat, c.reg.SupportedLocationFormats()))
	}

	hub, err := srcExt.ToHub(raw)
	if err != nil {
		c.metrics.RecordValidationFailure(ctx, srcExt.FormatID())
		return nil, fmt.Errorf("reading %s input: %w", srcExt.FormatID(), err)
	}

	if targetFormat == "" {
		canonical, err := srcExt.ToCanonical(raw)
		if err != nil {
			return nil, fmt.Errorf("serializing %s input: %w", srcExt.FormatID(), err)
		}
		return &types.LocationPayload{
			Location:     canonical,
			LocationType: composeFormatID(srcExt.FormatID(), srcExt.Variant(raw)),
		}, nil
	}

	tgtExt, ok := c.reg.LocationExtension(targetFormat)
	if !ok {
		return nil, fmt.Errorf("resolving target format: %w",
			types.NewUnsupportedFormat("convert", targetFormat, c.reg.SupportedLocationFormats()))
	}

	converted, err := tgtExt.FromHub(hub)
	if err != nil {
		return nil, fmt.Errorf("converting to %s: %w", tgtExt.FormatID(), err)
	}
	canonical, err := tgtExt.ToCanonical(converted)
	if err != nil {
		return nil, fmt.Errorf("serializing %s output: %w", tgtExt.FormatID(), err)
	}

	warnings, err := c.audit(srcExt, tgtExt, raw, hub, canonical)
	if err != nil {
		return nil, err
	}

	return &types.LocationPayload{
		Location:     canonical,
		LocationType: composeFormatID(tgtExt.FormatID(), tgtExt.Variant(converted)),
		Warnings:     warnings,
	}, nil
}

// audit runs the coordinate preservation checks: the ordinate stream of the
// original input against the stream recovered by re-parsing the target's
// canonical string, elementwise. Textual formats additionally have their
// ordinate literals compared as arbitrary-precision decimals, which catches
// precision that binary floating point silently discards.
func (c *Converter) audit(srcExt, tgtExt registry.LocationExtension, raw any, hub *geometry.Geometry, canonical string) ([]types.ConversionWarning, error) {
	reparsed, err := tgtExt.ParseString(canonical)
	if err != nil {
		return nil, types.WrapError(types.KindInternal, "convert",
			fmt.Sprintf("%s canonical output does not re-parse", tgtExt.FormatID()), err)
	}
	tgtHub, err := tgtExt.ToHub(reparsed)
	if err != nil {
		return nil, types.WrapError(types.KindInternal, "convert",
			fmt.Sprintf("%s canonical output does not round-trip", tgtExt.FormatID()), err)
	}

	srcVals := geometry.FlattenCoordinates(hub)
	tgtVals := geometry.FlattenCoordinates(tgtHub)
	warnings := CompareOrdinates(srcVals, tgtVals)

	warnings = append(warnings, c.auditLiterals(srcExt, tgtExt, raw, canonical, warnings)...)
	return warnings, nil
}

// auditLiterals applies the decimal-literal comparison when both formats
// are textual. Indexes already flagged for value drift are skipped.
func (c *Converter) auditLiterals(srcExt, tgtExt registry.LocationExtension, raw any, canonical string, flagged []types.ConversionWarning) []types.ConversionWarning {
	rawStr, ok := raw.(string)
	if !ok {
		return nil
	}
	srcLit, ok := srcExt.(registry.OrdinateLiteraler)
	if !ok {
		return nil
	}
	tgtLit, ok := tgtExt.(registry.OrdinateLiteraler)
	if !ok {
		return nil
	}

	srcStrs, err := srcLit.OrdinateLiterals(rawStr)
	if err != nil {
		return nil
	}
	tgtStrs, err := tgtLit.OrdinateLiterals(canonical)
	if err != nil {
		return nil
	}

	skip := make(map[int]bool, len(flagged))
	for _, w := range flagged {
		if w.Ordinate >= 0 {
			skip[w.Ordinate] = true
		}
	}
	return CompareLiterals(srcStrs, tgtStrs, skip)
}

func composeFormatID(base, variant string) string {
	if variant == "" {
		return base
	}
	return base + "-" + variant
}
