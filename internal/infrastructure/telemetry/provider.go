package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// DefaultServiceVersion is reported when no build version is configured.
const DefaultServiceVersion = "dev"

// shutdownTimeout bounds the final export of every signal on exit.
const shutdownTimeout = 10 * time.Second

// sdkProvider is the lifecycle shared by the trace, metric and log SDK providers.
type sdkProvider interface {
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// grpcOptions builds the OTLP gRPC exporter options common to all signals.
// The three exporter packages declare their own Option types, hence the
// constructor arguments.
func grpcOptions[O any](endpoint string, insecure bool, withEndpoint func(string) O, withInsecure func() O) []O {
	opts := []O{withEndpoint(endpoint)}
	if insecure {
		opts = append(opts, withInsecure())
	}
	return opts
}

// stopProvider flushes and stops sdk within shutdownTimeout.
func stopProvider(ctx context.Context, signal string, sdk sdkProvider, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := sdk.Shutdown(ctx); err != nil {
		logger.Error("OpenTelemetry export did not stop cleanly",
			zap.String("signal", signal),
			zap.Error(err),
		)
		return fmt.Errorf("failed to shutdown %s provider: %w", signal, err)
	}
	logger.Info("OpenTelemetry export stopped", zap.String("signal", signal))
	return nil
}

// newResource describes this process to every exporter.
func newResource(serviceName, version string) (*resource.Resource, error) {
	if version == "" {
		version = DefaultServiceVersion
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
