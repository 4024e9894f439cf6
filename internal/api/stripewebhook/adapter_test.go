package stripewebhooks

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"

	"school-admin-app/internal/domain/billing"
)

// The adapter functions only read ID, Created and the raw payload;
// dispatch on the event type happens in the handler.
func rawEvent(t *testing.T, id, payload string) stripe.Event {
	t.Helper()
	return stripe.Event{
		ID:      id,
		Created: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Data:    &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestCheckoutCompletedEvent(t *testing.T) {
	ev, err := checkoutCompletedEvent(rawEvent(t, "evt_1", `{
		"id": "cs_123",
		"subscription": {"id": "sub_123"},
		"customer": {"id": "cus_123"},
		"metadata": {"school_id": "4", "plan_id": "2", "requester_id": "9"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.EventID)
	assert.Equal(t, "sub_123", ev.SubscriptionRef)
	assert.Equal(t, "cus_123", ev.CustomerRef)
	assert.Equal(t, billing.CheckoutMetadata{SchoolID: 4, PlanID: 2, RequesterID: 9}, ev.Metadata)
	assert.Equal(t, int64(1709294400), ev.OccurredAt.Unix())
}

func TestCheckoutCompletedEventFallsBackToClientReference(t *testing.T) {
	ev, err := checkoutCompletedEvent(rawEvent(t, "evt_1", `{
		"id": "cs_123",
		"subscription": {"id": "sub_123"},
		"client_reference_id": "4"
	}`))
	require.NoError(t, err)
	assert.EqualValues(t, 4, ev.Metadata.SchoolID)
	assert.Zero(t, ev.Metadata.PlanID)
}

func TestCheckoutCompletedEventBadPayload(t *testing.T) {
	_, err := checkoutCompletedEvent(rawEvent(t, "evt_1", `{"metadata": 1}`))
	assert.Error(t, err)
}

func TestInvoicePaidEvent(t *testing.T) {
	ev, err := invoicePaidEvent(rawEvent(t, "evt_2", `{
		"id": "in_1",
		"subscription": {"id": "sub_123"},
		"billing_reason": "subscription_cycle",
		"amount_paid": 1000,
		"currency": "eur",
		"hosted_invoice_url": "https://pay.example/in_1",
		"lines": {"data": [{"period": {"start": 1709294400, "end": 1711972800}}]}
	}`))
	require.NoError(t, err)

	assert.True(t, ev.Renewal)
	assert.Equal(t, "sub_123", ev.SubscriptionRef)
	assert.Equal(t, "in_1", ev.InvoiceID)
	assert.Equal(t, 10.0, ev.Amount)
	assert.Equal(t, "eur", ev.Currency)
	assert.Equal(t, int64(1711972800), ev.PeriodEnd.Unix())
}

func TestInvoicePaidEventInitialPurchaseIsNotRenewal(t *testing.T) {
	ev, err := invoicePaidEvent(rawEvent(t, "evt_2", `{
		"id": "in_1",
		"subscription": {"id": "sub_123"},
		"billing_reason": "subscription_create",
		"amount_paid": 1000
	}`))
	require.NoError(t, err)
	assert.False(t, ev.Renewal)
}

func TestSubscriptionUpdatedEventScheduledCancellation(t *testing.T) {
	ev, err := subscriptionUpdatedEvent(rawEvent(t, "evt_3", `{
		"id": "sub_123",
		"status": "active",
		"cancel_at_period_end": true,
		"cancel_at": 1714521600
	}`))
	require.NoError(t, err)

	assert.Equal(t, billing.StatusActive, ev.Status)
	assert.True(t, ev.CancelAtPeriodEnd)
	require.NotNil(t, ev.CancelAt)
	assert.Equal(t, int64(1714521600), ev.CancelAt.Unix())
}

func TestSubscriptionUpdatedEventFallsBackToPeriodEnd(t *testing.T) {
	ev, err := subscriptionUpdatedEvent(rawEvent(t, "evt_3", `{
		"id": "sub_123",
		"status": "active",
		"cancel_at_period_end": true,
		"current_period_end": 1714521600
	}`))
	require.NoError(t, err)
	require.NotNil(t, ev.CancelAt)
	assert.Equal(t, int64(1714521600), ev.CancelAt.Unix())
}

func TestSubscriptionDeletedEvent(t *testing.T) {
	ev, err := subscriptionDeletedEvent(rawEvent(t, "evt_4", `{
		"id": "sub_123",
		"ended_at": 1714521600
	}`))
	require.NoError(t, err)

	assert.Equal(t, "sub_123", ev.SubscriptionRef)
	require.NotNil(t, ev.EndedAt)
	assert.Equal(t, int64(1714521600), ev.EndedAt.Unix())
}
