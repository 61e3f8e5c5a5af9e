// Package tracing wraps vendor calls in OpenTelemetry spans. Spans go to the
// globally registered tracer provider, which is a no-op unless the host
// process installs one.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go-vision-analyzer"

// StartVendorSpan starts a span around one vendor request
func StartVendorSpan(ctx context.Context, provider, operation string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "vision."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("vision.provider", provider),
			attribute.String("vision.operation", operation),
		),
	)
	return ctx, span
}

// StartAnalysisSpan starts the span covering a whole analyze request
func StartAnalysisSpan(ctx context.Context, requestID, analysisType string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "analysis.execute",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("analysis.type", analysisType),
		),
	)
	return ctx, span
}

// End records err on span, if any, and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
