package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"k8s.io/klog/v2"
)

// ServiceName is the service.name resource attribute and the otelgin server name.
const ServiceName = "kubemin-workload"

// InitTracerProvider installs a global tracer provider and W3C trace context
// propagation. Spans are exported over OTLP/HTTP to jaegerEndpoint, a full
// collector URL such as http://localhost:4318/v1/traces. With an empty
// endpoint spans are still created, so trace ids reach the logs, but nothing
// is exported. The returned function flushes and stops the provider.
func InitTracerProvider(ctx context.Context, serviceName, jaegerEndpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	}
	if jaegerEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(jaegerEndpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		klog.InfoS("Tracing enabled with OTLP exporter", "endpoint", jaegerEndpoint)
	} else {
		klog.InfoS("Tracing enabled without an exporter. TraceIDs will be available in logs but not sent to a collector.")
	}

	tracerProvider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tracerProvider.Shutdown, nil
}
