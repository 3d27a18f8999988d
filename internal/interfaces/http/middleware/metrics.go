package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/infrastructure/telemetry"
)

// HTTPMetricsConfig controls HTTPMetrics
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
	Logger        *zap.Logger // reports instrument setup failures
}

// responseSizeBuckets covers a bare error body up to a session view for a
// large order with many lots
var responseSizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576}

type httpInstruments struct {
	requests *telemetry.Counter
	duration *telemetry.Histogram
	size     *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in   httpInstruments
		errs []error
	)
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	in.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "Total number of HTTP requests", "{request}")
	collect(err)
	in.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	collect(err)
	in.size, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	})
	collect(err)
	in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &in, nil
}

// HTTPMetrics records request count, latency, response size and in-flight
// requests per route pattern. Without an enabled meter provider it only
// calls the next handler.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), cfg.Logger)
}

// HTTPMetricsWithMeter is HTTPMetrics on an existing meter
func HTTPMetricsWithMeter(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		if log != nil {
			log.Error("Failed to create HTTP metrics instruments, metrics disabled", zap.Error(err))
		}
		return passThrough
	}
	return in.observe
}

func (in *httpInstruments) observe(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	in.inFlight.Add(ctx, 1)
	defer in.inFlight.Add(ctx, -1)

	c.Next()

	// Route pattern, not the raw path, so session ids stay out of labels
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	in.requests.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))...)
	in.duration.RecordDuration(ctx, time.Since(start), attrs...)
	if n := c.Writer.Size(); n > 0 {
		in.size.Record(ctx, float64(n), attrs...)
	}
}
