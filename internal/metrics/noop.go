package metrics

import (
	"context"
	"time"
)

// NoOp is the zero-overhead Recorder used when OpenTelemetry is not wired.
type NoOp struct{}

// NewNoOp creates a new no-op metrics recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) RecordFormatDetected(ctx context.Context, format string) {}

func (n *NoOp) RecordDetectionFailed(ctx context.Context) {}

func (n *NoOp) RecordConversion(ctx context.Context, source, target string, duration time.Duration, warnings int) {
}

func (n *NoOp) RecordConversionError(ctx context.Context, source, target, errType string) {}

func (n *NoOp) RecordValidationFailure(ctx context.Context, format string) {}

func (n *NoOp) RecordMediaValidated(ctx context.Context, mime string, ok bool) {}

func (n *NoOp) RecordRegistryReplace(ctx context.Context, domain, key string) {}

func (n *NoOp) RecordAttestationBuilt(ctx context.Context, locationType string, mediaCount int) {}

func (n *NoOp) RecordOffchainSigned(ctx context.Context, duration time.Duration) {}

func (n *NoOp) RecordIndexerRequest(ctx context.Context, operation string, status int, duration time.Duration) {
}

func (n *NoOp) RecordIndexerRetry(ctx context.Context, operation string) {}

func (n *NoOp) RecordWatcherPoll(ctx context.Context, newRecords int, duration time.Duration) {}
