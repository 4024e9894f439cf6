package billing

import "errors"

var (
	// ErrUnsupportedBillingCycle means the referenced plan carries a
	// cycle the period calculator cannot advance. This is a catalog
	// configuration error: fatal for the single event, never a silent
	// default.
	ErrUnsupportedBillingCycle = errors.New("unsupported billing cycle")

	// ErrMissingMetadata means a webhook event cannot be correlated
	// back to a school/plan pair. Retrying will not help; the event is
	// rejected permanently and logged as an integration error.
	ErrMissingMetadata = errors.New("event metadata missing school/plan correlation")

	// ErrNoSuchSubscription means an event references a gateway
	// subscription we hold no row for, e.g. an invoice delivered ahead
	// of its checkout completion. The processor treats it as a no-op
	// rather than fabricating state.
	ErrNoSuchSubscription = errors.New("no subscription for gateway reference")

	// ErrSubscriptionNotFound is the read-path miss: the school has no
	// current entitlement.
	ErrSubscriptionNotFound = errors.New("no current subscription")

	// ErrGatewayRefConflict means an insert collided with an existing
	// row holding the same gateway reference.
	ErrGatewayRefConflict = errors.New("gateway subscription reference already recorded")
)
