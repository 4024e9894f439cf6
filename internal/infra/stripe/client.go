package stripe

import (
	"fmt"

	"github.com/stripe/stripe-go/v75"
	portalsession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/customer"
)

// Gateway is the slice of the payment provider the billing handlers
// use. Handlers take this interface so tests can swap in a fake and
// never touch the network.
type Gateway interface {
	CreateCustomer(name, email string, metadata map[string]string) (customerID string, err error)
	NewCheckoutSession(p CheckoutParams) (redirectURL string, err error)
	NewPortalSession(customerID, returnURL string) (redirectURL string, err error)
}

// CheckoutParams describes one subscription-mode hosted checkout.
// Metadata is attached to the resulting gateway subscription so the
// webhook handler can correlate the asynchronous completion event back
// to a school/plan/requester triple.
type CheckoutParams struct {
	CustomerID      string
	PlanName        string
	UnitAmountMinor int64
	Currency        string
	Interval        string
	SuccessURL      string
	CancelURL       string
	ClientReference string
	Metadata        map[string]string
}

// Client is the real Stripe-backed Gateway. Constructing it sets the
// SDK's API key; do it once in main.
type Client struct{}

func NewClient(secretKey string) *Client {
	stripe.Key = secretKey
	return &Client{}
}

func (c *Client) CreateCustomer(name, email string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
		Params: stripe.Params{
			Metadata: metadata,
		},
	}
	cus, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cus.ID, nil
}

func (c *Client) NewCheckoutSession(p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(p.CustomerID),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.UnitAmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.PlanName),
					},
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(p.Interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},

		ClientReferenceID: stripe.String(p.ClientReference),

		// Metadata must ride on the subscription, not just the
		// session: subscription-scoped webhook events carry only the
		// subscription's own metadata.
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.Metadata,
		},
	}
	params.Metadata = p.Metadata

	s, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

func (c *Client) NewPortalSession(customerID, returnURL string) (string, error) {
	portal, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return portal.URL, nil
}
