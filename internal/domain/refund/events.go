package refund

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendorhub/console/internal/domain/shared"
)

// Event types published by the refund workflow
const (
	AggregateTypeSession = "RefundSession"

	EventTypeSessionOpened   = "refund_session.opened"
	EventTypeSessionClosed   = "refund_session.closed"
	EventTypeRefundSubmitted = "refund.submitted"
	EventTypeRefundFailed    = "refund.failed"
)

// SessionOpenedEvent is published once a session finished loading
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	VendorID  string `json:"vendor_id"`
	TicketID  int64  `json:"ticket_id"`
	OrderID   int64  `json:"order_id"`
	LineCount int    `json:"line_count"`
}

// NewSessionOpenedEvent creates a SessionOpenedEvent
func NewSessionOpenedEvent(s *Session, at time.Time) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeSession, s.ID, at),
		VendorID:        s.VendorID,
		TicketID:        s.TicketID,
		OrderID:         s.OrderID,
		LineCount:       len(s.Forms),
	}
}

// SessionClosedEvent is published when a session is closed or expires
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	TicketID int64  `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// NewSessionClosedEvent creates a SessionClosedEvent
func NewSessionClosedEvent(s *Session, reason string, at time.Time) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionClosed, AggregateTypeSession, s.ID, at),
		TicketID:        s.TicketID,
		Reason:          reason,
	}
}

// SubmissionEvent carries the details shared by submission outcomes
type SubmissionEvent struct {
	shared.BaseDomainEvent
	VendorID         string          `json:"vendor_id"`
	TicketID         int64           `json:"ticket_id"`
	OrderID          int64           `json:"order_id"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	BankAccountID    int64           `json:"bank_account_id"`
	ManualMode       bool            `json:"manual_mode"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	Message          string          `json:"message"`
	Payload          Payload         `json:"payload"`
	Duration         time.Duration   `json:"duration"`
}

// Outcome derives the submission outcome from the event type
func (e *SubmissionEvent) Outcome() SubmissionOutcome {
	if e.EventType() == EventTypeRefundSubmitted {
		return OutcomeSucceeded
	}
	return OutcomeFailed
}

// NewSubmissionEvent creates a refund.submitted or refund.failed event.
// Amount and payment fields are passed in because a successful submit
// resets them on the session.
func NewSubmissionEvent(s *Session, amount decimal.Decimal, payload Payload, result SubmissionResult, took time.Duration, at time.Time) *SubmissionEvent {
	eventType := EventTypeRefundFailed
	if result.Outcome == OutcomeSucceeded {
		eventType = EventTypeRefundSubmitted
	}
	gatewayID := ""
	if payload.GatewayPaymentID != nil {
		gatewayID = *payload.GatewayPaymentID
	}
	return &SubmissionEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypeSession, s.ID, at),
		VendorID:         s.VendorID,
		TicketID:         s.TicketID,
		OrderID:          s.OrderID,
		RefundAmount:     amount,
		BankAccountID:    payload.BankAccountID,
		ManualMode:       payload.GatewayPaymentID != nil,
		GatewayPaymentID: gatewayID,
		Message:          result.Message,
		Payload:          payload,
		Duration:         took,
	}
}
