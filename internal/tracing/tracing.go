// Package tracing wraps SDK operations in OpenTelemetry spans. Spans are
// no-ops unless the host process installs a tracer provider.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/geoattest/sdk-go")

// Operation names a traced SDK operation.
type Operation string

const (
	OpDetect       Operation = "format.detect"
	OpConvert      Operation = "format.convert"
	OpBuild        Operation = "attestation.build"
	OpSignOffchain Operation = "attestation.sign_offchain"
	OpRegister     Operation = "attestation.register_onchain"
	OpIndexerList  Operation = "indexer.list_attestations"
	OpIndexerGet   Operation = "indexer.get_attestation"
	OpWatcherPoll  Operation = "watcher.poll"
)

// TraceOp wraps an operation with a span. The returned func records the
// terminal error (if any) and ends the span.
func TraceOp(ctx context.Context, op Operation, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, string(op), trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
