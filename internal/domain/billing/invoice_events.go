package billing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleInvoicePaid records the settled invoice and, when the gateway
// billed a new cycle, re-activates the subscription and advances its
// period from the invoice's period end. An invoice arriving ahead of
// its checkout completion finds no row and is acknowledged as a no-op;
// the completion event will establish state, and a subsequent
// subscription.updated carries the gateway's authoritative view.
func (p *Processor) HandleInvoicePaid(ctx context.Context, ev InvoicePaid) error {
	sub, err := p.repo.FindByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef)
	if errors.Is(err, ErrNoSuchSubscription) {
		p.log.Warn("invoice for unknown subscription, skipping",
			zap.String("event_id", ev.EventID),
			zap.String("subscription_ref", ev.SubscriptionRef))
		return nil
	}
	if err != nil {
		return err
	}

	var patch map[string]interface{}
	if ev.Renewal && (sub.Status == StatusActive || sub.Status == StatusPastDue) {
		plan, err := p.plans.FindByID(ctx, sub.PlanID)
		if err != nil {
			return fmt.Errorf("invoice event %s: %w", ev.EventID, err)
		}
		periodStart := ev.PeriodEnd
		if periodStart.IsZero() {
			// The invoice carried no usable period; advance from
			// receipt time rather than from the zero time.
			p.log.Warn("renewal invoice without period, using current time",
				zap.String("event_id", ev.EventID),
				zap.String("subscription_ref", ev.SubscriptionRef))
			periodStart = p.now()
		}
		period, err := ComputePeriod(plan.BillingCycle, periodStart)
		if err != nil {
			return fmt.Errorf("plan %d, event %s: %w", plan.ID, ev.EventID, err)
		}
		patch = map[string]interface{}{
			"status":               StatusActive,
			"current_period_start": period.Start,
			"next_billing_date":    period.NextBillingDate,
		}
	}

	return p.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if patch != nil {
			if err := p.repo.UpdateByGatewayRef(ctx, tx, ev.SubscriptionRef, patch); err != nil {
				return err
			}
		}
		if ev.InvoiceID == "" {
			return nil
		}
		planID := sub.PlanID
		ref := ev.SubscriptionRef
		payment := &Payment{
			SchoolID:             sub.SchoolID,
			PlanID:               &planID,
			StripeInvoiceID:      ev.InvoiceID,
			StripeSubscriptionID: &ref,
			Amount:               ev.Amount,
			Currency:             ev.Currency,
		}
		if ev.ReceiptURL != "" {
			url := ev.ReceiptURL
			payment.ReceiptURL = &url
		}
		return p.repo.RecordPayment(ctx, tx, payment)
	})
}

// HandleInvoicePaymentFailed moves a live subscription to PAST_DUE.
// The gateway keeps retrying the charge; a later invoice.paid brings
// the row back to ACTIVE.
func (p *Processor) HandleInvoicePaymentFailed(ctx context.Context, ev InvoicePaymentFailed) error {
	sub, err := p.repo.FindByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef)
	if errors.Is(err, ErrNoSuchSubscription) {
		p.log.Warn("payment failure for unknown subscription, skipping",
			zap.String("event_id", ev.EventID),
			zap.String("subscription_ref", ev.SubscriptionRef))
		return nil
	}
	if err != nil {
		return err
	}

	if sub.Status != StatusActive {
		return nil
	}

	p.log.Info("subscription past due",
		zap.String("event_id", ev.EventID),
		zap.Uint("school_id", sub.SchoolID))
	return p.repo.UpdateByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef, map[string]interface{}{
		"status": StatusPastDue,
	})
}
