package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/core/types"
)

func TestNoOpRecorder(t *testing.T) {
	rec := NewNoOp()
	ctx := context.Background()

	// All calls are no-ops and must not panic.
	rec.RecordFormatDetected(ctx, "geojson")
	rec.RecordDetectionFailed(ctx)
	rec.RecordConversion(ctx, "geojson", "wkt", 5*time.Millisecond, 0)
	rec.RecordConversionError(ctx, "geojson", "mgrs", "unsupported_format")
	rec.RecordValidationFailure(ctx, "wkt")
	rec.RecordMediaValidated(ctx, "image/png", false)
	rec.RecordRegistryReplace(ctx, "location", "geo")
	rec.RecordAttestationBuilt(ctx, "geojson-point", 2)
	rec.RecordOffchainSigned(ctx, time.Millisecond)
	rec.RecordIndexerRequest(ctx, "list_attestations", 200, 30*time.Millisecond)
	rec.RecordIndexerRetry(ctx, "list_attestations")
	rec.RecordWatcherPoll(ctx, 3, 40*time.Millisecond)
}

func TestNewRecorderNeverNil(t *testing.T) {
	rec := NewRecorder(zap.NewNop())
	require.NotNil(t, rec)

	// Whichever implementation came back, calls must be safe.
	rec.RecordFormatDetected(context.Background(), "geojson")
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "none", ClassifyError(nil))
	assert.Equal(t, "timeout", ClassifyError(context.DeadlineExceeded))
	assert.Equal(t, "cancelled", ClassifyError(context.Canceled))
	assert.Equal(t, "unsupported_format",
		ClassifyError(types.NewUnsupportedFormat("convert", "mgrs", nil)))
	assert.Equal(t, "connection_error", ClassifyError(errors.New("connection refused")))
	assert.Equal(t, "unknown", ClassifyError(errors.New("boom")))
}
