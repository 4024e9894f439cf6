package billing

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// HandleSubscriptionUpdated applies the gateway's current view of a
// subscription. A cancellation scheduled for period end keeps the
// status as-is and records the future end date; an unscheduled
// cancellation clears it again. Updates are last-writer-wins on the
// gateway ref, which is safe because the gateway redelivers its final
// state.
func (p *Processor) HandleSubscriptionUpdated(ctx context.Context, ev SubscriptionUpdated) error {
	sub, err := p.repo.FindByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef)
	if errors.Is(err, ErrNoSuchSubscription) {
		p.log.Warn("update for unknown subscription, skipping",
			zap.String("event_id", ev.EventID),
			zap.String("subscription_ref", ev.SubscriptionRef))
		return nil
	}
	if err != nil {
		return err
	}

	patch := map[string]interface{}{}

	switch {
	case ev.CancelAtPeriodEnd && ev.Status.Entitled():
		if ev.CancelAt != nil {
			patch["end_date"] = *ev.CancelAt
		}
	case ev.Status == StatusCanceled:
		patch["status"] = StatusCanceled
		endedAt := p.now()
		if ev.EndedAt != nil {
			endedAt = *ev.EndedAt
		}
		patch["end_date"] = endedAt
	default:
		patch["status"] = ev.Status
		if ev.Status.Entitled() && sub.EndDate != nil {
			// A previously scheduled cancellation was revoked.
			patch["end_date"] = nil
		}
	}

	if len(patch) == 0 {
		return nil
	}

	p.log.Info("subscription updated",
		zap.String("event_id", ev.EventID),
		zap.Uint("school_id", sub.SchoolID),
		zap.String("status", string(ev.Status)))
	return p.repo.UpdateByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef, patch)
}

// HandleSubscriptionDeleted closes out a subscription the gateway has
// ended for good.
func (p *Processor) HandleSubscriptionDeleted(ctx context.Context, ev SubscriptionDeleted) error {
	sub, err := p.repo.FindByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef)
	if errors.Is(err, ErrNoSuchSubscription) {
		p.log.Warn("deletion for unknown subscription, skipping",
			zap.String("event_id", ev.EventID),
			zap.String("subscription_ref", ev.SubscriptionRef))
		return nil
	}
	if err != nil {
		return err
	}

	endedAt := p.now()
	if ev.EndedAt != nil {
		endedAt = *ev.EndedAt
	}

	p.log.Info("subscription deleted",
		zap.String("event_id", ev.EventID),
		zap.Uint("school_id", sub.SchoolID))
	return p.repo.UpdateByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef, map[string]interface{}{
		"status":   StatusCanceled,
		"end_date": endedAt,
	})
}
