package refund

import "github.com/shopspring/decimal"

// PerUnitDiscount spreads the line discount over its ordered quantity.
// Returns zero when the line has no quantity.
func PerUnitDiscount(f DetailForm) decimal.Decimal {
	if f.MaxQuantity <= 0 {
		return decimal.Zero
	}
	return f.DiscountAmount.Div(decimal.NewFromInt(int64(f.MaxQuantity)))
}

// EffectiveUnitPrice is the unit price after discount, never negative
func EffectiveUnitPrice(f DetailForm) decimal.Decimal {
	price := f.UnitPrice.Sub(PerUnitDiscount(f))
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// DetailRefundAmount is the refund owed for the line's selected quantity
func DetailRefundAmount(f DetailForm) decimal.Decimal {
	if f.MaxQuantity <= 0 || f.Quantity <= 0 {
		return decimal.Zero
	}
	return EffectiveUnitPrice(f).Mul(decimal.NewFromInt(int64(f.Quantity)))
}

// AutoRefundAmount sums the refund of every included line with quantity > 0
func AutoRefundAmount(forms []DetailForm) decimal.Decimal {
	total := decimal.Zero
	for _, f := range forms {
		if !f.Selected() {
			continue
		}
		total = total.Add(DetailRefundAmount(f))
	}
	return total
}
