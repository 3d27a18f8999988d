package refund

import (
	"sort"
	"strings"
)

// IdentityNumberItem is an inventory unit previously exported against an
// order line. A serial number marks an individually tracked unit; lot-only
// items carry a remaining quantity instead.
type IdentityNumberItem struct {
	LotNumber         string  `json:"lotNumber"`
	SerialNumber      *string `json:"serialNumber,omitempty"`
	RemainingQuantity *int    `json:"remainingQuantity,omitempty"`
}

// HasSerial reports whether the item is serial-tracked
func (i IdentityNumberItem) HasSerial() bool {
	return i.SerialNumber != nil && strings.TrimSpace(*i.SerialNumber) != ""
}

// DeriveRequiresSerial decides whether serial entry is mandatory for a line:
// the product category is serial-tracked, or any exported unit has a serial.
func DeriveRequiresSerial(category string, items []IdentityNumberItem, policy Policy) bool {
	if policy.IsSerialCategory(category) {
		return true
	}
	for _, item := range items {
		if item.HasSerial() {
			return true
		}
	}
	return false
}

// LotAvailability aggregates items into lot -> available quantity.
// Serial-tagged items count once per occurrence; lot-only items add their
// remaining quantity.
func LotAvailability(items []IdentityNumberItem) map[string]int {
	lots := make(map[string]int)
	for _, item := range items {
		lot := strings.TrimSpace(item.LotNumber)
		if lot == "" {
			continue
		}
		if item.HasSerial() {
			lots[lot]++
			continue
		}
		remaining := 0
		if item.RemainingQuantity != nil {
			remaining = *item.RemainingQuantity
		}
		lots[lot] += remaining
	}
	return lots
}

// LotQuantity is one entry of a lot availability listing
type LotQuantity struct {
	LotNumber string `json:"lot_number"`
	Quantity  int    `json:"quantity"`
}

// SortedLotAvailability returns LotAvailability ordered by lot number
func SortedLotAvailability(items []IdentityNumberItem) []LotQuantity {
	lots := LotAvailability(items)
	result := make([]LotQuantity, 0, len(lots))
	for lot, qty := range lots {
		result = append(result, LotQuantity{LotNumber: lot, Quantity: qty})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LotNumber < result[j].LotNumber
	})
	return result
}

// SerialsForLot lists the exported serial numbers in lot
func SerialsForLot(items []IdentityNumberItem, lot string) []string {
	lot = strings.TrimSpace(lot)
	var serials []string
	for _, item := range items {
		if item.HasSerial() && strings.TrimSpace(item.LotNumber) == lot {
			serials = append(serials, strings.TrimSpace(*item.SerialNumber))
		}
	}
	return serials
}
