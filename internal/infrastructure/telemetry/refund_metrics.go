package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/vendorhub/console/internal/domain/refund"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Identity fetch results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// RefundMetrics records the refund workflow measurements.
type RefundMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	sessionsOpened     *Counter
	submissions        *Counter
	validationFailures *Counter
	identityFetches    *Counter
	submissionDuration *Histogram
}

// NewRefundMetrics registers the refund instruments on meter.
func NewRefundMetrics(meter metric.Meter, logger *zap.Logger) (*RefundMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &RefundMetrics{meter: meter, logger: logger}

	var err error
	if m.sessionsOpened, err = NewCounter(meter,
		"refund.sessions.opened", "Refund sessions opened from support tickets", "{session}"); err != nil {
		return nil, err
	}
	if m.submissions, err = NewCounter(meter,
		"refund.submissions", "Refund submissions by outcome", "{submission}"); err != nil {
		return nil, err
	}
	if m.validationFailures, err = NewCounter(meter,
		"refund.validation.failures", "Refund forms rejected before submission, by rule", "{failure}"); err != nil {
		return nil, err
	}
	if m.identityFetches, err = NewCounter(meter,
		"refund.identity_fetches", "Exported identity number lookups by result", "{fetch}"); err != nil {
		return nil, err
	}
	if m.submissionDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "refund.submission.duration",
		Description: "Time spent in the upstream refund call",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// SessionOpened counts one opened session.
func (m *RefundMetrics) SessionOpened(ctx context.Context) {
	m.sessionsOpened.Inc(ctx)
}

// SubmissionCompleted counts a submission and records its upstream latency.
func (m *RefundMetrics) SubmissionCompleted(ctx context.Context, outcome refund.SubmissionOutcome, took time.Duration) {
	m.submissions.Inc(ctx, AttrOutcome.String(string(outcome)))
	m.submissionDuration.RecordDuration(ctx, took, AttrOutcome.String(string(outcome)))
}

// ValidationFailed counts a validation rejection.
func (m *RefundMetrics) ValidationFailed(ctx context.Context, rule refund.ValidationRule) {
	m.validationFailures.Inc(ctx, AttrRule.String(string(rule)))
}

// IdentityFetched counts one identity number lookup.
func (m *RefundMetrics) IdentityFetched(ctx context.Context, ok bool) {
	result := ResultOK
	if !ok {
		result = ResultError
	}
	m.identityFetches.Inc(ctx, AttrResult.String(result))
}

// ObserveOpenSessions registers an asynchronous gauge reporting the number
// of live refund sessions as returned by count.
func (m *RefundMetrics) ObserveOpenSessions(count func() int) error {
	err := ObserveGauge(m.meter, "refund.sessions.open", "Refund sessions currently held in memory", "{session}",
		func() int64 { return int64(count()) })
	if err != nil {
		m.logger.Error("Failed to register open sessions gauge", zap.Error(err))
	}
	return err
}
