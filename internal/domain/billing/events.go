package billing

import "time"

// The processor consumes these gateway-agnostic events instead of the
// payment provider's SDK shapes. The stripewebhook adapter builds them
// at the boundary after signature verification, which keeps the state
// machine unit-testable without a network dependency.

// CheckoutMetadata is the correlation data attached to a checkout
// session when it is created and carried back on the asynchronous
// completion event. Without it the webhook handler could not map the
// event to a school/plan pair.
type CheckoutMetadata struct {
	SchoolID    uint
	PlanID      uint
	RequesterID uint
}

// CheckoutCompleted reports a finished hosted-checkout session.
type CheckoutCompleted struct {
	EventID         string
	SubscriptionRef string
	CustomerRef     string
	Metadata        CheckoutMetadata
	OccurredAt      time.Time
}

// InvoicePaid reports a settled invoice for a gateway subscription.
// Renewal is true when the gateway billed a new cycle (billing reason
// "subscription_cycle"), which is what advances the period.
type InvoicePaid struct {
	EventID         string
	SubscriptionRef string
	Renewal         bool
	PeriodEnd       time.Time
	InvoiceID       string
	Amount          float64
	Currency        string
	ReceiptURL      string
}

// InvoicePaymentFailed reports a charge failure on a subscription.
type InvoicePaymentFailed struct {
	EventID         string
	SubscriptionRef string
}

// SubscriptionUpdated mirrors the gateway's own view of a subscription
// after any change it made. Status is already translated to the
// internal vocabulary by the adapter. CancelAt is set when a
// cancellation is scheduled for the end of the current period.
type SubscriptionUpdated struct {
	EventID           string
	SubscriptionRef   string
	Status            SubscriptionStatus
	CancelAtPeriodEnd bool
	CancelAt          *time.Time
	EndedAt           *time.Time
}

// SubscriptionDeleted reports a subscription the gateway has ended.
type SubscriptionDeleted struct {
	EventID         string
	SubscriptionRef string
	EndedAt         *time.Time
}
