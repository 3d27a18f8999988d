package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendorhub/console/internal/domain/refund"
)

// RefundSubmissionModel is the persistence model for one refund submission attempt
type RefundSubmissionModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EventID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_refund_submissions_event_id"`
	SessionID        string          `gorm:"type:varchar(64);not null"`
	VendorID         string          `gorm:"type:varchar(64);not null;index"`
	TicketID         int64           `gorm:"not null;index"`
	OrderID          int64           `gorm:"not null"`
	RefundAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BankAccountID    int64           `gorm:"not null"`
	ManualMode       bool            `gorm:"not null"`
	GatewayPaymentID string          `gorm:"type:varchar(128);not null"`
	Outcome          string          `gorm:"type:varchar(16);not null"`
	Message          string          `gorm:"type:text;not null"`
	Payload          string          `gorm:"type:jsonb;not null"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RefundSubmissionModel) TableName() string {
	return "refund_submissions"
}

// RefundSubmissionModelFromDomain serializes the upstream payload to JSON
func RefundSubmissionModelFromDomain(r *refund.SubmissionRecord) (*RefundSubmissionModel, error) {
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode refund payload: %w", err)
	}
	return &RefundSubmissionModel{
		ID:               r.ID,
		EventID:          r.EventID,
		SessionID:        r.SessionID,
		VendorID:         r.VendorID,
		TicketID:         r.TicketID,
		OrderID:          r.OrderID,
		RefundAmount:     r.RefundAmount,
		BankAccountID:    r.BankAccountID,
		ManualMode:       r.ManualMode,
		GatewayPaymentID: r.GatewayPaymentID,
		Outcome:          string(r.Outcome),
		Message:          r.Message,
		Payload:          string(payload),
		CreatedAt:        r.CreatedAt,
	}, nil
}

// ToDomain converts the model back to a SubmissionRecord
func (m *RefundSubmissionModel) ToDomain() (*refund.SubmissionRecord, error) {
	var payload refund.Payload
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode refund payload of %s: %w", m.ID, err)
		}
	}
	return &refund.SubmissionRecord{
		ID:               m.ID,
		EventID:          m.EventID,
		SessionID:        m.SessionID,
		VendorID:         m.VendorID,
		TicketID:         m.TicketID,
		OrderID:          m.OrderID,
		RefundAmount:     m.RefundAmount,
		BankAccountID:    m.BankAccountID,
		ManualMode:       m.ManualMode,
		GatewayPaymentID: m.GatewayPaymentID,
		Outcome:          refund.SubmissionOutcome(m.Outcome),
		Message:          m.Message,
		Payload:          payload,
		CreatedAt:        m.CreatedAt,
	}, nil
}
