package refund

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DetailForm is the operator's refund selection for a single order line.
//
// Forms are values: every reducer returns an updated copy and leaves the
// receiver untouched. Reducers keep len(SerialNumbers) == Quantity and
// 0 <= Quantity <= MaxQuantity.
type DetailForm struct {
	OrderDetailID  int64
	ProductName    string
	Category       string
	MaxQuantity    int
	Quantity       int
	LotNumber      string
	SerialNumbers  []string
	Include        bool
	RequiresSerial bool
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal

	ExportedIdentityNumbers []IdentityNumberItem
	IdentityNumbersLoading  bool
	IdentityNumbersError    string
}

// NewDetailForm creates an unselected form for an order line
func NewDetailForm(detail OrderDetail, policy Policy) DetailForm {
	return DetailForm{
		OrderDetailID:          detail.ID,
		ProductName:            detail.ProductName,
		Category:               detail.Category,
		MaxQuantity:            detail.Quantity,
		SerialNumbers:          []string{},
		RequiresSerial:         policy.IsSerialCategory(detail.Category),
		UnitPrice:              detail.UnitPrice,
		DiscountAmount:         detail.DiscountAmount,
		IdentityNumbersLoading: true,
	}
}

// Toggle includes or excludes the line. Excluding zeroes the quantity and
// drops serials; including starts at quantity 1 when the line has stock.
func (f DetailForm) Toggle(include bool) DetailForm {
	if include == f.Include {
		return f.clone()
	}
	f = f.clone()
	f.Include = include
	if !include {
		f.Quantity = 0
		f.SerialNumbers = []string{}
		return f
	}
	qty := 0
	if f.MaxQuantity > 0 {
		qty = 1
	}
	return f.resize(qty)
}

// WithQuantity sets the quantity clamped to [0, MaxQuantity]
func (f DetailForm) WithQuantity(quantity int) DetailForm {
	return f.clone().resize(clampQuantity(quantity, f.MaxQuantity))
}

// WithSerial replaces the serial number at index
func (f DetailForm) WithSerial(index int, serial string) (DetailForm, error) {
	if index < 0 || index >= len(f.SerialNumbers) {
		return f, ErrSerialIndexOutOfRange
	}
	f = f.clone()
	f.SerialNumbers[index] = serial
	return f, nil
}

// WithLot sets the lot number
func (f DetailForm) WithLot(lot string) DetailForm {
	f = f.clone()
	f.LotNumber = strings.TrimSpace(lot)
	return f
}

// BeginIdentityFetch marks the line's identity numbers as loading
func (f DetailForm) BeginIdentityFetch() DetailForm {
	f = f.clone()
	f.IdentityNumbersLoading = true
	f.IdentityNumbersError = ""
	return f
}

// ApplyIdentityNumbers stores fetched identity records. The serial
// requirement is only ever OR-ed in, never cleared.
func (f DetailForm) ApplyIdentityNumbers(items []IdentityNumberItem, policy Policy) DetailForm {
	f = f.clone()
	f.ExportedIdentityNumbers = append([]IdentityNumberItem(nil), items...)
	f.RequiresSerial = f.RequiresSerial || DeriveRequiresSerial(f.Category, items, policy)
	f.IdentityNumbersLoading = false
	f.IdentityNumbersError = ""
	return f
}

// FailIdentityNumbers stops loading and records the fetch error.
// RequiresSerial keeps its previous value.
func (f DetailForm) FailIdentityNumbers(message string) DetailForm {
	f = f.clone()
	f.IdentityNumbersLoading = false
	f.IdentityNumbersError = message
	return f
}

// ResetSelection returns the line to its unselected, zeroed state
func (f DetailForm) ResetSelection() DetailForm {
	f = f.clone()
	f.Include = false
	f.Quantity = 0
	f.SerialNumbers = []string{}
	f.LotNumber = ""
	return f
}

// Selected reports whether the line contributes to the refund
func (f DetailForm) Selected() bool {
	return f.Include && f.Quantity > 0
}

// LotAvailability returns the available quantity per lot for this line
func (f DetailForm) LotAvailability() map[string]int {
	return LotAvailability(f.ExportedIdentityNumbers)
}

func (f DetailForm) resize(qty int) DetailForm {
	serials := make([]string, qty)
	copy(serials, f.SerialNumbers)
	f.Quantity = qty
	f.SerialNumbers = serials
	return f
}

func (f DetailForm) clone() DetailForm {
	f.SerialNumbers = append([]string{}, f.SerialNumbers...)
	if f.ExportedIdentityNumbers != nil {
		f.ExportedIdentityNumbers = append([]IdentityNumberItem(nil), f.ExportedIdentityNumbers...)
	}
	return f
}

func clampQuantity(quantity, maxQuantity int) int {
	if maxQuantity < 0 {
		maxQuantity = 0
	}
	switch {
	case quantity < 0:
		return 0
	case quantity > maxQuantity:
		return maxQuantity
	default:
		return quantity
	}
}
