package refund

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IdentityNumberPayload is one refunded unit group in the upstream request
type IdentityNumberPayload struct {
	LotNumber    string  `json:"lotNumber"`
	Quantity     int     `json:"quantity"`
	SerialNumber *string `json:"serialNumber,omitempty"`
}

// OrderDetailPayload lists the refunded units of one order line
type OrderDetailPayload struct {
	OrderDetailID   int64                   `json:"orderDetailId"`
	IdentityNumbers []IdentityNumberPayload `json:"identityNumbers"`
}

// Payload is the body of the upstream refund request
type Payload struct {
	RefundAmount     float64              `json:"refundAmount"`
	BankAccountID    int64                `json:"bankAccountId"`
	GatewayPaymentID *string              `json:"gatewayPaymentId,omitempty"`
	OrderDetails     []OrderDetailPayload `json:"orderDetails"`
}

// PayloadInput carries the session state needed to build a payload
type PayloadInput struct {
	Forms            []DetailForm
	RefundAmount     decimal.Decimal
	BankAccountID    int64
	ManualMode       bool
	GatewayPaymentID string
}

// BuildPayload turns the selected lines into the upstream request.
// Serial lines emit one entry per serial with quantity 1 and the shared lot;
// other lines emit a single entry carrying the quantity.
func BuildPayload(in PayloadInput) Payload {
	p := Payload{
		RefundAmount:  in.RefundAmount.InexactFloat64(),
		BankAccountID: in.BankAccountID,
		OrderDetails:  make([]OrderDetailPayload, 0, len(in.Forms)),
	}
	if in.ManualMode {
		ref := strings.TrimSpace(in.GatewayPaymentID)
		p.GatewayPaymentID = &ref
	}

	for _, f := range in.Forms {
		if !f.Selected() {
			continue
		}
		lot := strings.TrimSpace(f.LotNumber)
		detail := OrderDetailPayload{OrderDetailID: f.OrderDetailID}
		if f.RequiresSerial {
			detail.IdentityNumbers = make([]IdentityNumberPayload, 0, len(f.SerialNumbers))
			for _, s := range f.SerialNumbers {
				serial := strings.TrimSpace(s)
				detail.IdentityNumbers = append(detail.IdentityNumbers, IdentityNumberPayload{
					LotNumber:    lot,
					Quantity:     1,
					SerialNumber: &serial,
				})
			}
		} else {
			detail.IdentityNumbers = []IdentityNumberPayload{{
				LotNumber: lot,
				Quantity:  f.Quantity,
			}}
		}
		p.OrderDetails = append(p.OrderDetails, detail)
	}
	return p
}
