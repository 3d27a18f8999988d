package refund

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the upstream order as seen by the refund workflow
type Order struct {
	ID          int64
	Code        string
	Status      string
	DeliveredAt *time.Time
	TotalAmount decimal.Decimal
	Details     []OrderDetail
}

// OrderDetail is one product line of an order
type OrderDetail struct {
	ID             int64
	ProductID      int64
	ProductName    string
	Category       string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Ticket is a customer support ticket that may reference an order
type Ticket struct {
	ID          int64
	Title       string
	Description string
	ReplyNotes  string
	Status      string
	// OrderID is the structured order reference, when the upstream ticket carries one
	OrderID  *int64
	Messages []TicketMessage
}

// TicketMessage is a single message posted on a ticket thread
type TicketMessage struct {
	ID       int64
	SenderID string
	Body     string
	SentAt   time.Time
}

// BankAccount is a vendor bank account that can receive refunds
type BankAccount struct {
	ID            int64
	BankCode      string
	BankName      string
	AccountNumber string
	AccountHolder string
	IsDefault     bool
}

// SupportedBank is a bank accepted by the payment gateway
type SupportedBank struct {
	Code      string
	Name      string
	ShortName string
	LogoURL   string
}
