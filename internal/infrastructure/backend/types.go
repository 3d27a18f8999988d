package backend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendorhub/console/internal/domain/refund"
)

// envelope is the response wrapper used by every backend endpoint
type envelope struct {
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

// timestampLayouts are tried in order. Timestamps without an offset are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// timestamp decodes the backend's date-time strings, with or without an
// offset. null and "" decode to the zero time.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", s)
}

func (t timestamp) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type ticketDTO struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	ReplyNotes  string             `json:"replyNotes"`
	Status      string             `json:"status"`
	OrderID     *int64             `json:"orderId"`
	Messages    []ticketMessageDTO `json:"messages"`
}

type ticketMessageDTO struct {
	ID       int64     `json:"id"`
	SenderID string    `json:"senderId"`
	Content  string    `json:"content"`
	SentAt   timestamp `json:"sentAt"`
}

func (t ticketDTO) toDomain() *refund.Ticket {
	ticket := &refund.Ticket{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ReplyNotes:  t.ReplyNotes,
		Status:      t.Status,
		OrderID:     t.OrderID,
		Messages:    make([]refund.TicketMessage, 0, len(t.Messages)),
	}
	for _, m := range t.Messages {
		ticket.Messages = append(ticket.Messages, refund.TicketMessage{
			ID:       m.ID,
			SenderID: m.SenderID,
			Body:     m.Content,
			SentAt:   m.SentAt.Time,
		})
	}
	return ticket
}

type orderDTO struct {
	ID          int64            `json:"id"`
	Code        string           `json:"orderCode"`
	Status      string           `json:"status"`
	DeliveredAt timestamp        `json:"deliveredAt"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Details     []orderDetailDTO `json:"orderDetails"`
}

type orderDetailDTO struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"productId"`
	ProductName    string          `json:"productName"`
	Category       string          `json:"categoryName"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

func (o orderDTO) toDomain() *refund.Order {
	order := &refund.Order{
		ID:          o.ID,
		Code:        o.Code,
		Status:      o.Status,
		DeliveredAt: o.DeliveredAt.ptr(),
		TotalAmount: o.TotalAmount,
		Details:     make([]refund.OrderDetail, 0, len(o.Details)),
	}
	for _, d := range o.Details {
		order.Details = append(order.Details, refund.OrderDetail{
			ID:             d.ID,
			ProductID:      d.ProductID,
			ProductName:    d.ProductName,
			Category:       d.Category,
			Quantity:       d.Quantity,
			UnitPrice:      d.UnitPrice,
			DiscountAmount: d.DiscountAmount,
		})
	}
	return order
}

type bankAccountDTO struct {
	ID            int64  `json:"id"`
	BankCode      string `json:"bankCode"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
	IsDefault     bool   `json:"isDefault"`
}

func (b bankAccountDTO) toDomain() refund.BankAccount {
	return refund.BankAccount{
		ID:            b.ID,
		BankCode:      b.BankCode,
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		AccountHolder: b.AccountHolder,
		IsDefault:     b.IsDefault,
	}
}

type supportedBankDTO struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	LogoURL   string `json:"logo"`
}

func (b supportedBankDTO) toDomain() refund.SupportedBank {
	return refund.SupportedBank{
		Code:      b.Code,
		Name:      b.Name,
		ShortName: b.ShortName,
		LogoURL:   b.LogoURL,
	}
}
