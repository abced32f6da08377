// Package metrics provides observability for the SDK's conversion and
// collaborator paths. It uses a plugin pattern so there is zero overhead
// when OpenTelemetry is not wired into the host process.
package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/core/types"
)

// Recorder is the interface the SDK records operational metrics through.
// Implementations are either real OTEL metrics or no-op.
type Recorder interface {
	// Format detection and conversion
	RecordFormatDetected(ctx context.Context, format string)
	RecordDetectionFailed(ctx context.Context)
	RecordConversion(ctx context.Context, source, target string, duration time.Duration, warnings int)
	RecordConversionError(ctx context.Context, source, target, errType string)

	// Validation
	RecordValidationFailure(ctx context.Context, format string)
	RecordMediaValidated(ctx context.Context, mime string, ok bool)

	// Registry
	RecordRegistryReplace(ctx context.Context, domain, key string)

	// Attestation lifecycle
	RecordAttestationBuilt(ctx context.Context, locationType string, mediaCount int)
	RecordOffchainSigned(ctx context.Context, duration time.Duration)

	// Indexer API
	RecordIndexerRequest(ctx context.Context, operation string, status int, duration time.Duration)
	RecordIndexerRetry(ctx context.Context, operation string)
	RecordWatcherPoll(ctx context.Context, newRecords int, duration time.Duration)
}

// NewRecorder creates a metrics recorder. It detects whether an
// OpenTelemetry meter provider is installed and returns either a real OTEL
// implementation or a no-op one.
func NewRecorder(logger *zap.Logger) Recorder {
	meter := otel.GetMeterProvider().Meter("github.com/geoattest/sdk-go")

	if _, err := meter.Int64Counter("geoattest.probe"); err != nil {
		logger.Debug("OpenTelemetry not available, metrics disabled")
		return NewNoOp()
	}

	rec, err := NewOTEL(meter)
	if err != nil {
		logger.Warn("failed to initialize OTEL metrics, falling back to no-op", zap.Error(err))
		return NewNoOp()
	}
	return rec
}

// ClassifyError maps an error to a low-cardinality label for metrics.
func ClassifyError(err error) string {
	if err == nil {
		return "none"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	if kind := types.ErrorKind(err); kind != "" {
		return string(kind)
	}
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection"):
		return "connection_error"
	case strings.Contains(errStr, "not found"):
		return "not_found"
	default:
		return "unknown"
	}
}
