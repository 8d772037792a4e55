// Package telemetry configures OpenTelemetry tracing.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/apperr"
)

// InstrumentationName names the tracer used by the service layer.
const InstrumentationName = "taskboard"

// Setup installs an OTLP/HTTP exporter when endpoint is set. Without an
// endpoint the global no-op provider stays in place.
//
// The returned shutdown flushes pending spans and should be deferred.
func Setup(ctx context.Context, endpoint, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the tracer of the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// End records *errp on span and ends it. Client errors are kept as span
// events; only unclassified failures mark the span as errored.
func End(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		err := *errp
		span.RecordError(err)
		if apperr.KindOf(err) == apperr.KindInternal {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
