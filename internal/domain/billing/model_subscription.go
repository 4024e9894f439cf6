// Package billing is the subscription lifecycle core: the subscription
// and payment records, the billing-period arithmetic, the repository
// that enforces the one-active-subscription-per-school invariant, and
// the webhook event processor that is the only writer of subscription
// state.
package billing

import (
	"time"

	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
)

// SubscriptionStatus is the internal lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "ACTIVE"
	StatusTrialing SubscriptionStatus = "TRIALING"
	StatusPastDue  SubscriptionStatus = "PAST_DUE"
	StatusCanceled SubscriptionStatus = "CANCELED"
	StatusInactive SubscriptionStatus = "INACTIVE"
)

// Entitled reports whether the status counts as a live entitlement.
// TRIALING is equivalent to ACTIVE for entitlement purposes.
func (s SubscriptionStatus) Entitled() bool {
	return s == StatusActive || s == StatusTrialing
}

// SchoolSubscription records what a school is subscribed to and since
// when. Rows are created and mutated only by the webhook Processor and
// are never hard-deleted: a superseded subscription is marked CANCELED
// with an end date so history survives.
type SchoolSubscription struct {
	ID       uint `gorm:"primaryKey"`
	SchoolID uint `gorm:"not null;index"`
	School   *schools.School

	PlanID uint `gorm:"not null"`
	Plan   *plans.Plan

	Status SubscriptionStatus `gorm:"type:varchar(16);not null;index"`

	CurrentPeriodStart time.Time `gorm:"not null"`
	NextBillingDate    time.Time `gorm:"not null"`
	EndDate            *time.Time

	// StripeSubscriptionID is the gateway's identifier for the
	// recurring subscription; unique so one gateway subscription can
	// never materialize as two internal rows.
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_school_subscriptions_stripe_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
