package refund

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationRule identifies which pre-submission check failed
type ValidationRule string

const (
	RuleOrderNotLoaded           ValidationRule = "order_not_loaded"
	RuleBankAccountRequired      ValidationRule = "bank_account_required"
	RuleNoLinesSelected          ValidationRule = "no_lines_selected"
	RuleInvalidAmount            ValidationRule = "invalid_amount"
	RuleNotEligible              ValidationRule = "not_eligible"
	RuleGatewayReferenceRequired ValidationRule = "gateway_reference_required"
	RuleLotRequired              ValidationRule = "lot_required"
	RuleSerialCountMismatch      ValidationRule = "serial_count_mismatch"
	RuleSerialEmpty              ValidationRule = "serial_empty"
	RuleSerialDuplicate          ValidationRule = "serial_duplicate"
)

// ValidationError is the first rule a refund request violates
type ValidationError struct {
	Rule          ValidationRule `json:"rule"`
	Message       string         `json:"message"`
	OrderDetailID int64          `json:"order_detail_id,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationInput is everything the validator looks at
type ValidationInput struct {
	Order            *Order
	Forms            []DetailForm
	RefundAmount     decimal.Decimal
	BankAccountID    int64
	ManualMode       bool
	GatewayPaymentID string
	Now              time.Time
}

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount as whole Vietnamese dong with locale grouping
func FormatVND(amount decimal.Decimal) string {
	return vndPrinter.Sprintf("%d ₫", amount.Round(0).IntPart())
}

// Validate applies the submission rules in order and returns the first
// violation, or nil when the request may be submitted.
func Validate(in ValidationInput, policy Policy) *ValidationError {
	if in.Order == nil {
		return fail(RuleOrderNotLoaded, "Không tìm thấy thông tin đơn hàng. Vui lòng tải lại.")
	}

	if in.BankAccountID <= 0 {
		return fail(RuleBankAccountRequired, "Vui lòng chọn tài khoản ngân hàng để hoàn tiền.")
	}

	selected := 0
	for _, f := range in.Forms {
		if f.Selected() {
			selected++
		}
	}
	if selected == 0 {
		return fail(RuleNoLinesSelected, "Vui lòng chọn ít nhất một sản phẩm với số lượng lớn hơn 0 để hoàn tiền.")
	}

	if !in.RefundAmount.IsPositive() {
		return fail(RuleInvalidAmount, "Số tiền hoàn phải lớn hơn 0.")
	}
	if in.RefundAmount.GreaterThan(in.Order.TotalAmount) {
		return fail(RuleInvalidAmount, fmt.Sprintf(
			"Số tiền hoàn không được vượt quá tổng giá trị đơn hàng (%s).", FormatVND(in.Order.TotalAmount)))
	}

	if in.Order.Status != policy.deliveredStatus() {
		return fail(RuleNotEligible, "Chỉ có thể hoàn tiền cho đơn hàng đã giao thành công.")
	}
	if !IsRefundEligible(in.Order, in.Now, policy) {
		return fail(RuleNotEligible, fmt.Sprintf(
			"Đơn hàng đã quá %d ngày kể từ khi giao hàng, không thể hoàn tiền.", policy.WindowDays()))
	}

	if in.ManualMode && strings.TrimSpace(in.GatewayPaymentID) == "" {
		return fail(RuleGatewayReferenceRequired, "Vui lòng nhập mã giao dịch khi hoàn tiền thủ công.")
	}

	for _, f := range in.Forms {
		if !f.Selected() {
			continue
		}
		if verr := validateLine(f); verr != nil {
			return verr
		}
	}

	return nil
}

func validateLine(f DetailForm) *ValidationError {
	if strings.TrimSpace(f.LotNumber) == "" {
		return failLine(f, RuleLotRequired, fmt.Sprintf("Vui lòng nhập số lô cho sản phẩm \"%s\".", f.ProductName))
	}
	if !f.RequiresSerial {
		return nil
	}
	if len(f.SerialNumbers) != f.Quantity {
		return failLine(f, RuleSerialCountMismatch, fmt.Sprintf(
			"Vui lòng nhập đủ %d số serial cho sản phẩm \"%s\".", f.Quantity, f.ProductName))
	}
	seen := make(map[string]struct{}, len(f.SerialNumbers))
	for _, s := range f.SerialNumbers {
		s = strings.TrimSpace(s)
		if s == "" {
			return failLine(f, RuleSerialEmpty, fmt.Sprintf(
				"Số serial của sản phẩm \"%s\" không được để trống.", f.ProductName))
		}
		seen[s] = struct{}{}
	}
	if len(seen) != len(f.SerialNumbers) {
		return failLine(f, RuleSerialDuplicate, fmt.Sprintf(
			"Số serial của sản phẩm \"%s\" bị trùng lặp.", f.ProductName))
	}
	return nil
}

func fail(rule ValidationRule, msg string) *ValidationError {
	return &ValidationError{Rule: rule, Message: msg}
}

func failLine(f DetailForm, rule ValidationRule, msg string) *ValidationError {
	return &ValidationError{Rule: rule, Message: msg, OrderDetailID: f.OrderDetailID}
}
