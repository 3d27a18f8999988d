package dto

import "github.com/shopspring/decimal"

// SessionURI binds the session path parameter
type SessionURI struct {
	SessionID string `uri:"sessionId" binding:"required"`
}

// LineURI binds the session and order line path parameters
type LineURI struct {
	SessionID     string `uri:"sessionId" binding:"required"`
	OrderDetailID int64  `uri:"orderDetailId" binding:"required,gt=0"`
}

// SerialURI addresses one serial slot of an order line
type SerialURI struct {
	SessionID     string `uri:"sessionId" binding:"required"`
	OrderDetailID int64  `uri:"orderDetailId" binding:"required,gt=0"`
	Index         int    `uri:"index" binding:"gte=0"`
}

// TicketURI binds the support ticket path parameter
type TicketURI struct {
	TicketID int64 `uri:"ticketId" binding:"required,gt=0"`
}

// ToggleLineRequest selects or deselects an order line
type ToggleLineRequest struct {
	Include *bool `json:"include" binding:"required" example:"true"`
}

// SetQuantityRequest sets the quantity returned for a line
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0" example:"2"`
}

// SetSerialRequest sets one serial number of a line
type SetSerialRequest struct {
	SerialNumber string `json:"serial_number" binding:"max=128" example:"SN-0001"`
}

// SetLotRequest sets the lot number of a line
type SetLotRequest struct {
	LotNumber string `json:"lot_number" binding:"max=128" example:"LOT-2024-01"`
}

// SetAmountRequest overrides the computed refund amount
type SetAmountRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"150000"`
}

// UpdatePaymentRequest chooses where the refund is paid to
type UpdatePaymentRequest struct {
	BankAccountID    int64  `json:"bank_account_id" binding:"gte=0" example:"12"`
	ManualMode       bool   `json:"manual_mode" example:"false"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"max=128" example:""`
}

// SessionQuery holds optional query flags of GET session
type SessionQuery struct {
	// Wait blocks until identity numbers have loaded
	Wait bool `form:"wait"`
}
