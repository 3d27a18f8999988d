package refund

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
)

// SubmissionAuditHandler stores every submission attempt in the audit table
type SubmissionAuditHandler struct {
	repo   refund.SubmissionRepository
	logger *zap.Logger
}

// NewSubmissionAuditHandler creates a new handler for submission events
func NewSubmissionAuditHandler(repo refund.SubmissionRepository, logger *zap.Logger) *SubmissionAuditHandler {
	return &SubmissionAuditHandler{
		repo:   repo,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SubmissionAuditHandler) EventTypes() []string {
	return []string{refund.EventTypeRefundSubmitted, refund.EventTypeRefundFailed}
}

// Handle writes an audit record unless one already exists for the event
func (h *SubmissionAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	submission, ok := event.(*refund.SubmissionEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", "*refund.SubmissionEvent"),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	existing, err := h.repo.FindByEventID(ctx, submission.EventID())
	if err != nil {
		return fmt.Errorf("failed to check existing submission record: %w", err)
	}
	if existing != nil {
		h.logger.Warn("submission already recorded, skipping",
			zap.String("event_id", submission.EventID().String()),
		)
		return nil
	}

	record := refund.NewSubmissionRecord(submission)
	if err := h.repo.Save(ctx, record); err != nil {
		h.logger.Error("failed to save submission record",
			zap.String("event_id", submission.EventID().String()),
			zap.Int64("ticket_id", submission.TicketID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save submission record: %w", err)
	}

	h.logger.Info("submission recorded",
		zap.String("record_id", record.ID.String()),
		zap.Int64("ticket_id", record.TicketID),
		zap.String("outcome", string(record.Outcome)),
	)
	return nil
}

var _ shared.EventHandler = (*SubmissionAuditHandler)(nil)
