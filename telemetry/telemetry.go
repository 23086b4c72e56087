// Package telemetry installs the OpenTelemetry tracer provider that carries
// upstream request spans to an OTLP/HTTP collector.
package telemetry

import (
	"context"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracesPath is appended to an endpoint given without a path.
const TracesPath = "/v1/traces"

type Config struct {
	// Endpoint is the collector base URL, e.g. http://localhost:4318. Empty
	// disables export.
	Endpoint    string
	ServiceName string
	Version     string
	// SampleRate outside (0, 1) samples every trace.
	SampleRate float64
}

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// New exports spans over OTLP/HTTP to cfg.Endpoint and installs the provider
// globally. With no endpoint it returns a no-op provider.
func New(ctx context.Context, cfg Config, log logger.Logger) (trace.TracerProvider, ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		return noop.NewTracerProvider(), noopShutdown, nil
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, nil, errors.Wrap(err, "telemetry: parse endpoint")
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, nil, errors.Newf("telemetry: endpoint %q must be an http(s) URL", u.Redacted())
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = TracesPath
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(u.String()),
		otlptracehttp.WithTimeout(10 * time.Second),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	if u.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "telemetry: create trace exporter")
	}
	tp, err := NewProvider(ctx, cfg, log, sdktrace.WithBatcher(exporter))
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("exporting traces to %s", u.Redacted())

	return tp, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// NewProvider builds an SDK provider for cfg. opts supply the span pipeline.
func NewProvider(ctx context.Context, cfg Config, log logger.Logger, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		log.Warn("telemetry resource incomplete: %s", err)
	} else if err != nil {
		return nil, errors.Wrap(err, "telemetry: create resource")
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}
	all := append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	}, opts...)
	return sdktrace.NewTracerProvider(all...), nil
}
