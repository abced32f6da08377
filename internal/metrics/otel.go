package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTEL implements Recorder using OpenTelemetry instruments.
type OTEL struct {
	formatsDetected  metric.Int64Counter
	detectionMisses  metric.Int64Counter
	conversions      metric.Int64Counter
	conversionTime   metric.Float64Histogram
	conversionWarns  metric.Int64Histogram
	conversionErrors metric.Int64Counter

	validationFailures metric.Int64Counter
	mediaValidations   metric.Int64Counter

	registryReplaces metric.Int64Counter

	attestationsBuilt metric.Int64Counter
	signingTime       metric.Float64Histogram

	indexerRequests metric.Int64Counter
	indexerTime     metric.Float64Histogram
	indexerRetries  metric.Int64Counter
	watcherRecords  metric.Int64Histogram
	watcherTime     metric.Float64Histogram
}

// NewOTEL builds the instrument set on the given meter.
func NewOTEL(meter metric.Meter) (*OTEL, error) {
	m := &OTEL{}

	var err error

	m.formatsDetected, err = meter.Int64Counter("geoattest.detection.hits",
		metric.WithDescription("Number of successful format detections"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.detectionMisses, err = meter.Int64Counter("geoattest.detection.misses",
		metric.WithDescription("Number of inputs no registered format accepted"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.conversions, err = meter.Int64Counter("geoattest.conversion.count",
		metric.WithDescription("Number of completed format conversions"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.conversionTime, err = meter.Float64Histogram("geoattest.conversion.duration",
		metric.WithDescription("Time taken to convert a location"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.conversionWarns, err = meter.Int64Histogram("geoattest.conversion.warnings",
		metric.WithDescription("Preservation warnings per conversion"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.conversionErrors, err = meter.Int64Counter("geoattest.conversion.errors",
		metric.WithDescription("Number of failed conversions"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.validationFailures, err = meter.Int64Counter("geoattest.validation.failures",
		metric.WithDescription("Number of location validation failures"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.mediaValidations, err = meter.Int64Counter("geoattest.media.validations",
		metric.WithDescription("Number of media attachment validations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.registryReplaces, err = meter.Int64Counter("geoattest.registry.replaced",
		metric.WithDescription("Number of extension registrations overwritten"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.attestationsBuilt, err = meter.Int64Counter("geoattest.attestations.built",
		metric.WithDescription("Number of attestation payloads assembled"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.signingTime, err = meter.Float64Histogram("geoattest.signing.duration",
		metric.WithDescription("Time taken to sign an offchain attestation"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.indexerRequests, err = meter.Int64Counter("geoattest.indexer.requests",
		metric.WithDescription("Number of indexer API requests"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.indexerTime, err = meter.Float64Histogram("geoattest.indexer.duration",
		metric.WithDescription("Indexer API request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.indexerRetries, err = meter.Int64Counter("geoattest.indexer.retries",
		metric.WithDescription("Number of indexer API retries"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.watcherRecords, err = meter.Int64Histogram("geoattest.watcher.new_records",
		metric.WithDescription("New attestations seen per watcher poll"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	m.watcherTime, err = meter.Float64Histogram("geoattest.watcher.poll_duration",
		metric.WithDescription("Watcher poll latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *OTEL) RecordFormatDetected(ctx context.Context, format string) {
	m.formatsDetected.Add(ctx, 1,
		metric.WithAttributes(attribute.String("format", format)))
}

func (m *OTEL) RecordDetectionFailed(ctx context.Context) {
	m.detectionMisses.Add(ctx, 1)
}

func (m *OTEL) RecordConversion(ctx context.Context, source, target string, duration time.Duration, warnings int) {
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("target", target),
	)
	m.conversions.Add(ctx, 1, attrs)
	m.conversionTime.Record(ctx, duration.Seconds(), attrs)
	m.conversionWarns.Record(ctx, int64(warnings), attrs)
}

func (m *OTEL) RecordConversionError(ctx context.Context, source, target, errType string) {
	m.conversionErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("target", target),
			attribute.String("error_type", errType),
		))
}

func (m *OTEL) RecordValidationFailure(ctx context.Context, format string) {
	m.validationFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("format", format)))
}

func (m *OTEL) RecordMediaValidated(ctx context.Context, mime string, ok bool) {
	m.mediaValidations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("mime", mime),
			attribute.Bool("ok", ok),
		))
}

func (m *OTEL) RecordRegistryReplace(ctx context.Context, domain, key string) {
	m.registryReplaces.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("key", key),
		))
}

func (m *OTEL) RecordAttestationBuilt(ctx context.Context, locationType string, mediaCount int) {
	m.attestationsBuilt.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("location_type", locationType),
			attribute.Int("media_count", mediaCount),
		))
}

func (m *OTEL) RecordOffchainSigned(ctx context.Context, duration time.Duration) {
	m.signingTime.Record(ctx, duration.Seconds())
}

func (m *OTEL) RecordIndexerRequest(ctx context.Context, operation string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Int("status", status),
	)
	m.indexerRequests.Add(ctx, 1, attrs)
	m.indexerTime.Record(ctx, duration.Seconds(), attrs)
}

func (m *OTEL) RecordIndexerRetry(ctx context.Context, operation string) {
	m.indexerRetries.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", operation)))
}

func (m *OTEL) RecordWatcherPoll(ctx context.Context, newRecords int, duration time.Duration) {
	m.watcherRecords.Record(ctx, int64(newRecords))
	m.watcherTime.Record(ctx, duration.Seconds())
}
