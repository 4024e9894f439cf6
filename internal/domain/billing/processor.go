package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
)

// Processor drives every subscription state transition. It is the only
// component permitted to mutate status and period fields; everything
// else reads. All dependencies come in through the constructor so the
// state machine runs in tests against an in-memory database and a fake
// clock.
type Processor struct {
	repo    *Repository
	schools *schools.Store
	plans   *plans.Store
	log     *zap.Logger
	now     func() time.Time
}

func NewProcessor(repo *Repository, schoolStore *schools.Store, planStore *plans.Store, log *zap.Logger) *Processor {
	return &Processor{
		repo:    repo,
		schools: schoolStore,
		plans:   planStore,
		log:     log.Named("billing.processor"),
		now:     time.Now,
	}
}

// WithClock overrides the processor's notion of now. Test hook.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// HandleCheckoutCompleted activates the subscription a finished
// checkout paid for. Any prior entitled (or past-due) rows for the
// school are closed out in the same transaction that inserts the new
// one, so the one-active-subscription invariant holds even when two
// deliveries for the same school race.
func (p *Processor) HandleCheckoutCompleted(ctx context.Context, ev CheckoutCompleted) error {
	if ev.SubscriptionRef == "" {
		return fmt.Errorf("%w: checkout session carries no subscription", ErrMissingMetadata)
	}
	if ev.Metadata.SchoolID == 0 || ev.Metadata.PlanID == 0 {
		return fmt.Errorf("%w: event %s", ErrMissingMetadata, ev.EventID)
	}

	// Idempotency: a redelivered completion for a ref we already hold
	// is acknowledged without touching state.
	if _, err := p.repo.FindByGatewayRef(ctx, p.repo.DB(), ev.SubscriptionRef); err == nil {
		p.log.Info("checkout already processed",
			zap.String("event_id", ev.EventID),
			zap.String("subscription_ref", ev.SubscriptionRef))
		return nil
	} else if !errors.Is(err, ErrNoSuchSubscription) {
		return err
	}

	plan, err := p.plans.FindByID(ctx, ev.Metadata.PlanID)
	if err != nil {
		return fmt.Errorf("checkout event %s: %w", ev.EventID, err)
	}

	start := ev.OccurredAt
	if start.IsZero() {
		start = p.now()
	}
	period, err := ComputePeriod(plan.BillingCycle, start)
	if err != nil {
		return fmt.Errorf("plan %d, event %s: %w", plan.ID, ev.EventID, err)
	}

	status := StatusActive
	if plan.IsFree() {
		status = StatusTrialing
	}

	ref := ev.SubscriptionRef
	sub := &SchoolSubscription{
		SchoolID:             ev.Metadata.SchoolID,
		PlanID:               plan.ID,
		Status:               status,
		CurrentPeriodStart:   period.Start,
		NextBillingDate:      period.NextBillingDate,
		StripeSubscriptionID: &ref,
	}

	err = p.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := p.repo.DeactivateActiveFor(ctx, tx, ev.Metadata.SchoolID, p.now()); err != nil {
			return err
		}
		return p.repo.Create(ctx, tx, sub)
	})
	if errors.Is(err, ErrGatewayRefConflict) {
		// A concurrent delivery inserted the row first. Same outcome.
		p.log.Info("checkout processed concurrently",
			zap.String("event_id", ev.EventID),
			zap.String("subscription_ref", ev.SubscriptionRef))
		return nil
	}
	if err != nil {
		return err
	}

	if ev.CustomerRef != "" {
		if err := p.schools.SetStripeCustomerID(ctx, ev.Metadata.SchoolID, ev.CustomerRef); err != nil {
			p.log.Warn("failed to persist gateway customer ref",
				zap.Uint("school_id", ev.Metadata.SchoolID),
				zap.Error(err))
		}
	}

	p.log.Info("subscription activated",
		zap.String("event_id", ev.EventID),
		zap.Uint("school_id", ev.Metadata.SchoolID),
		zap.Uint("plan_id", plan.ID),
		zap.String("status", string(status)))
	return nil
}
