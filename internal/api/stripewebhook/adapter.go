package stripewebhooks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v75"

	"school-admin-app/internal/domain/billing"
	stripeinfra "school-admin-app/internal/infra/stripe"
)

// The adapter is the only place Stripe's webhook object shapes are
// visible. Everything past it works on the internal event types, so the
// state machine stays gateway-agnostic.

func checkoutCompletedEvent(event stripe.Event) (billing.CheckoutCompleted, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return billing.CheckoutCompleted{}, fmt.Errorf("parse checkout session: %w", err)
	}

	ev := billing.CheckoutCompleted{
		EventID:    event.ID,
		OccurredAt: time.Unix(event.Created, 0),
		Metadata: billing.CheckoutMetadata{
			SchoolID:    uintMeta(session.Metadata, "school_id"),
			PlanID:      uintMeta(session.Metadata, "plan_id"),
			RequesterID: uintMeta(session.Metadata, "requester_id"),
		},
	}
	if session.Subscription != nil {
		ev.SubscriptionRef = session.Subscription.ID
	}
	if session.Customer != nil {
		ev.CustomerRef = session.Customer.ID
	}

	// Fall back to the client reference for the school when the
	// metadata bag was stripped somewhere along the way.
	if ev.Metadata.SchoolID == 0 && session.ClientReferenceID != "" {
		if id, err := strconv.ParseUint(session.ClientReferenceID, 10, 64); err == nil {
			ev.Metadata.SchoolID = uint(id)
		}
	}

	return ev, nil
}

func invoicePaidEvent(event stripe.Event) (billing.InvoicePaid, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return billing.InvoicePaid{}, fmt.Errorf("parse invoice: %w", err)
	}

	ev := billing.InvoicePaid{
		EventID:    event.ID,
		Renewal:    inv.BillingReason == stripe.InvoiceBillingReasonSubscriptionCycle,
		InvoiceID:  inv.ID,
		Amount:     float64(inv.AmountPaid) / 100.0,
		Currency:   string(inv.Currency),
		ReceiptURL: inv.HostedInvoiceURL,
	}
	if inv.Subscription != nil {
		ev.SubscriptionRef = inv.Subscription.ID
	}

	// Prefer the subscription line's period over the invoice-level one;
	// the latter covers the whole invoice, not the billed cycle.
	periodEnd := inv.PeriodEnd
	if inv.Lines != nil && len(inv.Lines.Data) > 0 && inv.Lines.Data[0].Period != nil {
		periodEnd = inv.Lines.Data[0].Period.End
	}
	if periodEnd > 0 {
		ev.PeriodEnd = time.Unix(periodEnd, 0)
	}

	return ev, nil
}

func invoicePaymentFailedEvent(event stripe.Event) (billing.InvoicePaymentFailed, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return billing.InvoicePaymentFailed{}, fmt.Errorf("parse invoice: %w", err)
	}

	ev := billing.InvoicePaymentFailed{EventID: event.ID}
	if inv.Subscription != nil {
		ev.SubscriptionRef = inv.Subscription.ID
	}
	return ev, nil
}

func subscriptionUpdatedEvent(event stripe.Event) (billing.SubscriptionUpdated, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return billing.SubscriptionUpdated{}, fmt.Errorf("parse subscription: %w", err)
	}

	ev := billing.SubscriptionUpdated{
		EventID:           event.ID,
		SubscriptionRef:   sub.ID,
		Status:            stripeinfra.StatusFromStripe(string(sub.Status)),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.CancelAtPeriodEnd {
		switch {
		case sub.CancelAt > 0:
			ev.CancelAt = unixTime(sub.CancelAt)
		case sub.CurrentPeriodEnd > 0:
			ev.CancelAt = unixTime(sub.CurrentPeriodEnd)
		}
	}
	if sub.EndedAt > 0 {
		ev.EndedAt = unixTime(sub.EndedAt)
	}
	return ev, nil
}

func subscriptionDeletedEvent(event stripe.Event) (billing.SubscriptionDeleted, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return billing.SubscriptionDeleted{}, fmt.Errorf("parse subscription: %w", err)
	}

	ev := billing.SubscriptionDeleted{
		EventID:         event.ID,
		SubscriptionRef: sub.ID,
	}
	if sub.EndedAt > 0 {
		ev.EndedAt = unixTime(sub.EndedAt)
	}
	return ev, nil
}

func uintMeta(md map[string]string, key string) uint {
	if md == nil {
		return 0
	}
	v, err := strconv.ParseUint(md[key], 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func unixTime(sec int64) *time.Time {
	t := time.Unix(sec, 0)
	return &t
}
