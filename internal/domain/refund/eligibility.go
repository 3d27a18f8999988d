package refund

import "time"

// IsRefundEligible reports whether the order was delivered and the
// eligibility window since delivery has not passed.
func IsRefundEligible(order *Order, now time.Time, policy Policy) bool {
	if order == nil || order.Status != policy.deliveredStatus() || order.DeliveredAt == nil {
		return false
	}
	return now.Sub(*order.DeliveredAt) <= policy.EligibilityWindow
}

// RefundDeadline returns the last instant a refund may be requested, or nil
// when the order has not been delivered.
func RefundDeadline(order *Order, policy Policy) *time.Time {
	if order == nil || order.DeliveredAt == nil {
		return nil
	}
	deadline := order.DeliveredAt.Add(policy.EligibilityWindow)
	return &deadline
}
