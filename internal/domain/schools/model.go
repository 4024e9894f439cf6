package schools

import "time"

// School is the tenant. Most of its lifecycle (enrollment, staff,
// scheduling) is owned by other parts of the application; billing only
// cares about its identity and the denormalized gateway customer ref.
type School struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null"`

	ContactEmail string `gorm:"column:contact_email"`

	// StripeCustomerID is set exactly once, the first time a checkout
	// is initiated for the school, and never overwritten afterwards.
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_schools_stripe_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
