package refund

import (
	"context"

	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
)

// MetricsEventHandler turns refund events into metrics
type MetricsEventHandler struct {
	metrics Metrics
}

// NewMetricsEventHandler creates a handler recording into m
func NewMetricsEventHandler(m Metrics) *MetricsEventHandler {
	return &MetricsEventHandler{metrics: m}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsEventHandler) EventTypes() []string {
	return []string{
		refund.EventTypeSessionOpened,
		refund.EventTypeRefundSubmitted,
		refund.EventTypeRefundFailed,
	}
}

// Handle records the event
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *refund.SessionOpenedEvent:
		h.metrics.SessionOpened(ctx)
	case *refund.SubmissionEvent:
		h.metrics.SubmissionCompleted(ctx, e.Outcome(), e.Duration)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsEventHandler)(nil)
