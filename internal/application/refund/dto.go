package refund

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendorhub/console/internal/domain/refund"
)

// SessionView is the read model of a refund session returned to the console
type SessionView struct {
	ID            string                    `json:"id"`
	TicketID      int64                     `json:"ticket_id"`
	OrderID       int64                     `json:"order_id"`
	State         refund.SessionState       `json:"state"`
	Order         *OrderView                `json:"order,omitempty"`
	Eligible      bool                      `json:"eligible"`
	Lines         []LineView                `json:"lines"`
	RefundAmount  decimal.Decimal           `json:"refund_amount"`
	AutoAmount    decimal.Decimal           `json:"auto_refund_amount"`
	CustomAmount  bool                      `json:"custom_amount"`
	BankAccountID int64                     `json:"bank_account_id,omitempty"`
	BankAccounts  []BankAccountView         `json:"bank_accounts"`
	Banks         []SupportedBankView       `json:"supported_banks"`
	ManualMode    bool                      `json:"manual_mode"`
	GatewayRef    string                    `json:"gateway_payment_id,omitempty"`
	SectionErrors map[refund.Section]string `json:"section_errors,omitempty"`
	Validation    *refund.ValidationError   `json:"last_validation,omitempty"`
	Result        *refund.SubmissionResult  `json:"last_result,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// OrderView summarises the order being refunded
type OrderView struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Status         string          `json:"status"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	RefundDeadline *time.Time      `json:"refund_deadline,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// LineView is one order line with its refund selection
type LineView struct {
	OrderDetailID      int64                `json:"order_detail_id"`
	ProductName        string               `json:"product_name"`
	Category           string               `json:"category"`
	MaxQuantity        int                  `json:"max_quantity"`
	Quantity           int                  `json:"quantity"`
	Include            bool                 `json:"include"`
	LotNumber          string               `json:"lot_number"`
	SerialNumbers      []string             `json:"serial_numbers"`
	RequiresSerial     bool                 `json:"requires_serial"`
	UnitPrice          decimal.Decimal      `json:"unit_price"`
	DiscountAmount     decimal.Decimal      `json:"discount_amount"`
	EffectiveUnitPrice decimal.Decimal      `json:"effective_unit_price"`
	LineAmount         decimal.Decimal      `json:"line_amount"`
	IdentityLoading    bool                 `json:"identity_numbers_loading"`
	IdentityError      string               `json:"identity_numbers_error,omitempty"`
	Lots               []refund.LotQuantity `json:"lots"`
}

// BankAccountView is a vendor bank account with the number partly masked
type BankAccountView struct {
	ID            int64  `json:"id"`
	BankCode      string `json:"bank_code"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	IsDefault     bool   `json:"is_default"`
}

// SupportedBankView is a bank the gateway pays out to
type SupportedBankView struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	LogoURL   string `json:"logo_url,omitempty"`
}

// SubmitResult is the answer to a submit request
type SubmitResult struct {
	refund.SubmissionResult
	// TicketRefreshRequired tells the console to reload the ticket
	TicketRefreshRequired bool         `json:"ticket_refresh_required"`
	Session               *SessionView `json:"session"`
}

// SubmissionView is one entry of a ticket's refund history
type SubmissionView struct {
	ID               string                   `json:"id"`
	SessionID        string                   `json:"session_id"`
	TicketID         int64                    `json:"ticket_id"`
	OrderID          int64                    `json:"order_id"`
	RefundAmount     decimal.Decimal          `json:"refund_amount"`
	BankAccountID    int64                    `json:"bank_account_id"`
	ManualMode       bool                     `json:"manual_mode"`
	GatewayPaymentID string                   `json:"gateway_payment_id,omitempty"`
	Outcome          refund.SubmissionOutcome `json:"outcome"`
	Message          string                   `json:"message"`
	CreatedAt        time.Time                `json:"created_at"`
}

// ToSessionView converts a session into its read model
func ToSessionView(s *refund.Session, now time.Time) *SessionView {
	v := &SessionView{
		ID:            s.ID,
		TicketID:      s.TicketID,
		OrderID:       s.OrderID,
		State:         s.State,
		Eligible:      s.RefundEligible(now),
		Lines:         make([]LineView, 0, len(s.Forms)),
		RefundAmount:  s.RefundAmount,
		AutoAmount:    s.AutoRefundAmount(),
		CustomAmount:  s.CustomAmount,
		BankAccountID: s.BankAccountID,
		BankAccounts:  make([]BankAccountView, 0, len(s.BankAccounts)),
		Banks:         make([]SupportedBankView, 0, len(s.SupportedBanks)),
		ManualMode:    s.ManualMode,
		GatewayRef:    s.GatewayPaymentID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Order != nil {
		v.Order = &OrderView{
			ID:             s.Order.ID,
			Code:           s.Order.Code,
			Status:         s.Order.Status,
			DeliveredAt:    s.Order.DeliveredAt,
			RefundDeadline: refund.RefundDeadline(s.Order, s.Policy()),
			TotalAmount:    s.Order.TotalAmount,
		}
	}
	for _, f := range s.Forms {
		v.Lines = append(v.Lines, toLineView(f))
	}
	for _, a := range s.BankAccounts {
		v.BankAccounts = append(v.BankAccounts, BankAccountView{
			ID:            a.ID,
			BankCode:      a.BankCode,
			BankName:      a.BankName,
			AccountNumber: maskAccountNumber(a.AccountNumber),
			AccountHolder: a.AccountHolder,
			IsDefault:     a.IsDefault,
		})
	}
	for _, b := range s.SupportedBanks {
		v.Banks = append(v.Banks, SupportedBankView{Code: b.Code, Name: b.Name, ShortName: b.ShortName, LogoURL: b.LogoURL})
	}
	if len(s.SectionErrors) > 0 {
		v.SectionErrors = make(map[refund.Section]string, len(s.SectionErrors))
		for k, msg := range s.SectionErrors {
			v.SectionErrors[k] = msg
		}
	}
	if s.LastValidation != nil {
		verr := *s.LastValidation
		v.Validation = &verr
	}
	if s.LastResult != nil {
		res := *s.LastResult
		v.Result = &res
	}
	return v
}

func toLineView(f refund.DetailForm) LineView {
	return LineView{
		OrderDetailID:      f.OrderDetailID,
		ProductName:        f.ProductName,
		Category:           f.Category,
		MaxQuantity:        f.MaxQuantity,
		Quantity:           f.Quantity,
		Include:            f.Include,
		LotNumber:          f.LotNumber,
		SerialNumbers:      append([]string{}, f.SerialNumbers...),
		RequiresSerial:     f.RequiresSerial,
		UnitPrice:          f.UnitPrice,
		DiscountAmount:     f.DiscountAmount,
		EffectiveUnitPrice: refund.EffectiveUnitPrice(f),
		LineAmount:         refund.DetailRefundAmount(f),
		IdentityLoading:    f.IdentityNumbersLoading,
		IdentityError:      f.IdentityNumbersError,
		Lots:               refund.SortedLotAvailability(f.ExportedIdentityNumbers),
	}
}

// maskAccountNumber keeps the last four digits
func maskAccountNumber(number string) string {
	runes := []rune(number)
	if len(runes) <= 4 {
		return number
	}
	masked := make([]rune, len(runes))
	for i := range runes {
		if i < len(runes)-4 {
			masked[i] = '*'
		} else {
			masked[i] = runes[i]
		}
	}
	return string(masked)
}

// ToSubmissionView converts an audit record
func ToSubmissionView(r refund.SubmissionRecord) SubmissionView {
	return SubmissionView{
		ID:               r.ID.String(),
		SessionID:        r.SessionID,
		TicketID:         r.TicketID,
		OrderID:          r.OrderID,
		RefundAmount:     r.RefundAmount,
		BankAccountID:    r.BankAccountID,
		ManualMode:       r.ManualMode,
		GatewayPaymentID: r.GatewayPaymentID,
		Outcome:          r.Outcome,
		Message:          r.Message,
		CreatedAt:        r.CreatedAt,
	}
}
