package refund

import (
	"strings"
	"time"
)

// DeliveredStatus is the order status that allows refunds
const DeliveredStatus = "Delivered"

// Policy carries the tunable business rules of the refund workflow
type Policy struct {
	// EligibilityWindow is how long after delivery a refund may be requested
	EligibilityWindow time.Duration
	// DeliveredStatus is the order status required for a refund
	DeliveredStatus string
	// SerialCategories are product categories whose units are always serial-tracked
	SerialCategories []string
	// KeepCustomAmountOnLineEdit keeps a manually entered amount when line selection changes
	KeepCustomAmountOnLineEdit bool
}

// DefaultPolicy returns the rules used by the vendor console
func DefaultPolicy() Policy {
	return Policy{
		EligibilityWindow: 7 * 24 * time.Hour,
		DeliveredStatus:   DeliveredStatus,
		SerialCategories:  []string{"Machinery", "Máy móc"},
	}
}

// IsSerialCategory reports whether products of category always need serial numbers
func (p Policy) IsSerialCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return false
	}
	for _, c := range p.SerialCategories {
		if strings.EqualFold(strings.TrimSpace(c), category) {
			return true
		}
	}
	return false
}

// WindowDays returns the eligibility window in whole days
func (p Policy) WindowDays() int {
	return int(p.EligibilityWindow / (24 * time.Hour))
}

func (p Policy) deliveredStatus() string {
	if p.DeliveredStatus == "" {
		return DeliveredStatus
	}
	return p.DeliveredStatus
}
