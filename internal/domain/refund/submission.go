package refund

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmissionRecord is the audit trail entry of one submit attempt
type SubmissionRecord struct {
	ID               uuid.UUID
	EventID          uuid.UUID
	SessionID        string
	VendorID         string
	TicketID         int64
	OrderID          int64
	RefundAmount     decimal.Decimal
	BankAccountID    int64
	ManualMode       bool
	GatewayPaymentID string
	Outcome          SubmissionOutcome
	Message          string
	Payload          Payload
	CreatedAt        time.Time
}

// NewSubmissionRecord builds an audit record from a submission event
func NewSubmissionRecord(e *SubmissionEvent) *SubmissionRecord {
	return &SubmissionRecord{
		ID:               uuid.New(),
		EventID:          e.EventID(),
		SessionID:        e.AggregateID(),
		VendorID:         e.VendorID,
		TicketID:         e.TicketID,
		OrderID:          e.OrderID,
		RefundAmount:     e.RefundAmount,
		BankAccountID:    e.BankAccountID,
		ManualMode:       e.ManualMode,
		GatewayPaymentID: e.GatewayPaymentID,
		Outcome:          e.Outcome(),
		Message:          e.Message,
		Payload:          e.Payload,
		CreatedAt:        e.OccurredAt(),
	}
}

// SubmissionRepository persists submission audit records
type SubmissionRepository interface {
	Save(ctx context.Context, record *SubmissionRecord) error
	// FindByTicket returns the newest records first, at most limit of them
	FindByTicket(ctx context.Context, ticketID int64, limit int) ([]SubmissionRecord, error)
	// FindByEventID returns nil, nil when no record exists
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*SubmissionRecord, error)
}
