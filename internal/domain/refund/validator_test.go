package refund

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validationNow = time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

func deliveredOrder(daysAgo int) *Order {
	delivered := validationNow.Add(-time.Duration(daysAgo) * 24 * time.Hour)
	return &Order{
		ID:          1042,
		Status:      "Delivered",
		DeliveredAt: &delivered,
		TotalAmount: decimal.NewFromInt(1000000),
	}
}

func selectedLine(id int64, qty int) DetailForm {
	f := DetailForm{
		OrderDetailID: id,
		ProductName:   "Phân bón NPK",
		MaxQuantity:   5,
		UnitPrice:     decimal.NewFromInt(100000),
	}
	return f.Toggle(true).WithQuantity(qty).WithLot("LOT-A")
}

func validInput() ValidationInput {
	return ValidationInput{
		Order:         deliveredOrder(2),
		Forms:         []DetailForm{selectedLine(1, 2)},
		RefundAmount:  decimal.NewFromInt(200000),
		BankAccountID: 7,
		Now:           validationNow,
	}
}

func TestValidate_ValidInput(t *testing.T) {
	assert.Nil(t, Validate(validInput(), DefaultPolicy()))
}

func TestValidate_RuleOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ValidationInput)
		rule   ValidationRule
	}{
		{
			name:   "missing order wins over everything",
			mutate: func(in *ValidationInput) { in.Order = nil; in.BankAccountID = 0; in.Forms = nil },
			rule:   RuleOrderNotLoaded,
		},
		{
			name:   "bank account before lines",
			mutate: func(in *ValidationInput) { in.BankAccountID = 0; in.Forms = nil },
			rule:   RuleBankAccountRequired,
		},
		{
			name:   "no lines selected",
			mutate: func(in *ValidationInput) { in.Forms = []DetailForm{selectedLine(1, 0)} },
			rule:   RuleNoLinesSelected,
		},
		{
			name:   "excluded lines do not count",
			mutate: func(in *ValidationInput) { in.Forms = []DetailForm{selectedLine(1, 2).Toggle(false)} },
			rule:   RuleNoLinesSelected,
		},
		{
			name:   "zero amount",
			mutate: func(in *ValidationInput) { in.RefundAmount = decimal.Zero },
			rule:   RuleInvalidAmount,
		},
		{
			name:   "amount above order total",
			mutate: func(in *ValidationInput) { in.RefundAmount = decimal.NewFromInt(1000001) },
			rule:   RuleInvalidAmount,
		},
		{
			name:   "order not delivered",
			mutate: func(in *ValidationInput) { in.Order.Status = "Shipping" },
			rule:   RuleNotEligible,
		},
		{
			name:   "delivery too old",
			mutate: func(in *ValidationInput) { in.Order = deliveredOrder(8) },
			rule:   RuleNotEligible,
		},
		{
			name:   "manual mode without reference",
			mutate: func(in *ValidationInput) { in.ManualMode = true; in.GatewayPaymentID = "  " },
			rule:   RuleGatewayReferenceRequired,
		},
		{
			name:   "missing lot",
			mutate: func(in *ValidationInput) { in.Forms[0] = in.Forms[0].WithLot("") },
			rule:   RuleLotRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			verr := Validate(in, DefaultPolicy())
			require.NotNil(t, verr)
			assert.Equal(t, tt.rule, verr.Rule)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidate_AmountEqualToTotalIsAllowed(t *testing.T) {
	in := validInput()
	in.RefundAmount = decimal.NewFromInt(1000000)
	assert.Nil(t, Validate(in, DefaultPolicy()))
}

func TestValidate_AmountMessageNamesOrderTotal(t *testing.T) {
	in := validInput()
	in.RefundAmount = decimal.NewFromInt(2000000)
	verr := Validate(in, DefaultPolicy())
	require.NotNil(t, verr)
	assert.Contains(t, verr.Message, "vượt quá")
	assert.Contains(t, verr.Message, "₫")
}

func TestValidate_EightDaysAfterDelivery(t *testing.T) {
	in := validInput()
	in.Order = deliveredOrder(8)

	verr := Validate(in, DefaultPolicy())
	require.NotNil(t, verr)
	assert.Equal(t, RuleNotEligible, verr.Rule)
	assert.Contains(t, verr.Message, "7 ngày")
}

func TestValidate_ManualModeNeedsTransactionCode(t *testing.T) {
	in := validInput()
	in.ManualMode = true

	verr := Validate(in, DefaultPolicy())
	require.NotNil(t, verr)
	assert.Equal(t, RuleGatewayReferenceRequired, verr.Rule)
	assert.Contains(t, verr.Message, "mã giao dịch")

	in.GatewayPaymentID = "FT26140012345"
	assert.Nil(t, Validate(in, DefaultPolicy()))
}

func TestValidate_Serials(t *testing.T) {
	serialLine := func(serials ...string) DetailForm {
		f := selectedLine(9, len(serials))
		f.RequiresSerial = true
		for i, s := range serials {
			var err error
			f, err = f.WithSerial(i, s)
			require.NoError(t, err)
		}
		return f
	}

	tests := []struct {
		name string
		line DetailForm
		rule ValidationRule
	}{
		{"empty serial", serialLine("SN-1", ""), RuleSerialEmpty},
		{"whitespace serial", serialLine("   ", "SN-2"), RuleSerialEmpty},
		{"duplicate serial", serialLine("SN-1", "SN-1"), RuleSerialDuplicate},
		{"duplicate after trimming", serialLine("SN-1", " SN-1 "), RuleSerialDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Forms = []DetailForm{tt.line}
			verr := Validate(in, DefaultPolicy())
			require.NotNil(t, verr)
			assert.Equal(t, tt.rule, verr.Rule)
			assert.Equal(t, int64(9), verr.OrderDetailID)
		})
	}

	t.Run("count mismatch", func(t *testing.T) {
		f := serialLine("SN-1", "SN-2")
		f.SerialNumbers = f.SerialNumbers[:1]
		in := validInput()
		in.Forms = []DetailForm{f}
		verr := Validate(in, DefaultPolicy())
		require.NotNil(t, verr)
		assert.Equal(t, RuleSerialCountMismatch, verr.Rule)
	})

	t.Run("distinct serials pass", func(t *testing.T) {
		in := validInput()
		in.Forms = []DetailForm{serialLine("SN-1", "SN-2")}
		assert.Nil(t, Validate(in, DefaultPolicy()))
	})

	t.Run("serials ignored when not required", func(t *testing.T) {
		in := validInput()
		in.Forms = []DetailForm{selectedLine(3, 2)}
		assert.Nil(t, Validate(in, DefaultPolicy()))
	})
}

func TestFormatVND(t *testing.T) {
	assert.Contains(t, FormatVND(decimal.NewFromInt(1000000)), "000")
	assert.Contains(t, FormatVND(decimal.NewFromInt(5)), "₫")
}
