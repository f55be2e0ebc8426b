package listscribe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	TracerNameTranscriber = "listscribe-transcriber"
	TracerNameHTTP        = "listscribe-http"
)

// OtelConfig names the service in exported telemetry. The OTLP exporters
// read OTEL_EXPORTER_OTLP_* themselves.
type OtelConfig struct {
	ServiceVersion string `env:"OTEL_SERVICE_VERSION,default=0.1.0"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=listscribe"`
	DeployEnv      string `env:"OTEL_DEPLOY_ENV,default=development"`
}

type OtelShutdown func(ctx context.Context) error

// InitOtel installs global trace and metric providers exporting over OTLP
// gRPC and returns them with a shutdown func that flushes both.
func InitOtel(ctx context.Context) (*sdktrace.TracerProvider, *sdkmetric.MeterProvider, OtelShutdown, error) {
	var cfg OtelConfig
	if err := DecodeEnv(&cfg); err != nil {
		return nil, nil, nil, err
	}

	res, err := otelResource(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, nil, nil, errors.Join(fmt.Errorf("metric exporter: %w", err), traceExporter.Shutdown(ctx))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, mp, shutdownOnce(tp.Shutdown, mp.Shutdown), nil
}

// shutdownOnce runs every fn on the first call and returns the joined
// result on every later call without running them again.
func shutdownOnce(fns ...func(context.Context) error) func(context.Context) error {
	var (
		once sync.Once
		err  error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			errs := make([]error, 0, len(fns))
			for _, fn := range fns {
				errs = append(errs, fn(ctx))
			}
			err = errors.Join(errs...)
		})
		return err
	}
}

func otelResource(ctx context.Context, cfg OtelConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
			attribute.String("deployment.environment", cfg.DeployEnv),
		),
	)
}
