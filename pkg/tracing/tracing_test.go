package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestInitTracerProviderWithoutExporter(t *testing.T) {
	prevProvider, prevPropagator := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	shutdown, err := InitTracerProvider(context.Background(), ServiceName, "")
	require.NoError(t, err)

	ctx, span := otel.Tracer("test").Start(context.Background(), "compile")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())

	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracerProviderWithEndpoint(t *testing.T) {
	prevProvider, prevPropagator := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	// the exporter connects lazily, so no collector is needed until spans are flushed
	shutdown, err := InitTracerProvider(context.Background(), ServiceName, "http://127.0.0.1:4318/v1/traces")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
