package stripe

import (
	"strings"

	"school-admin-app/internal/domain/billing"
	"school-admin-app/internal/domain/plans"
)

// StatusFromStripe translates the gateway's subscription status into
// the internal vocabulary. Anything we do not recognize maps to
// INACTIVE rather than guessing at an entitlement.
func StatusFromStripe(s string) billing.SubscriptionStatus {
	switch strings.TrimSpace(s) {
	case "active":
		return billing.StatusActive
	case "trialing":
		return billing.StatusTrialing
	case "past_due", "unpaid":
		return billing.StatusPastDue
	case "canceled", "incomplete_expired":
		return billing.StatusCanceled
	default:
		return billing.StatusInactive
	}
}

// IntervalForCycle maps a plan's billing cycle to the recurring
// interval Stripe expects on a price. The false return mirrors the
// period calculator: unsupported cycles are refused, never defaulted.
func IntervalForCycle(cycle plans.BillingCycle) (string, bool) {
	switch cycle {
	case plans.CycleMonthly:
		return "month", true
	case plans.CycleYearly:
		return "year", true
	}
	return "", false
}
