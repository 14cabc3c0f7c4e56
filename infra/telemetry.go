package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tnqbao/gau-catalog-service/config"
)

type TelemetryClient struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

func serviceResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", cfg.Grafana.ServiceName),
		attribute.String("deployment.environment", cfg.Environment.Mode),
		attribute.String("service.namespace", cfg.Environment.Group),
	)
}

// InitTelemetry installs the global tracer and meter providers. Without an
// OTLP endpoint the no-op globals stay in place and only runtime metrics are
// registered.
func InitTelemetry(cfg *config.EnvConfig) *TelemetryClient {
	client := &TelemetryClient{}
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if cfg.Grafana.OTLPEndpoint != "" {
		ctx := context.Background()
		res := serviceResource(cfg)

		traceExporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			panic(fmt.Sprintf("Failed to create OTLP trace exporter: %v", err))
		}
		client.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(client.TracerProvider)

		metricExporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			panic(fmt.Sprintf("Failed to create OTLP metric exporter: %v", err))
		}
		client.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(client.MeterProvider)
	}

	if err := runtime.Start(); err != nil {
		panic(fmt.Sprintf("Failed to start runtime instrumentation: %v", err))
	}

	return client
}

func (t *TelemetryClient) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
