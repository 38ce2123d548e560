package main

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// newTracer returns a real tracer when enabled, or an explicit no-op
// tracer otherwise — the same "disabled config returns
// trace.NewNoopTracerProvider().Tracer(...)" fallback
// pkg/telemetry/tracing.New uses, minus its OTLP/gRPC exporter setup:
// this CLI has no collector to ship spans to, so --trace only needs the
// span/timing shape, not a concrete backend.
func newTracer(enabled bool) trace.Tracer {
	if !enabled {
		return trace.NewNoopTracerProvider().Tracer("polygen")
	}
	return otel.Tracer("polygen")
}

// traceStage starts a span named for one pipeline stage (preprocessor,
// modifier, emitter, postprocessor) and ends it when fn returns,
// recording fn's error on the span as an error event if fn fails.
func traceStage(ctx context.Context, tracer trace.Tracer, stage string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, stage)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
