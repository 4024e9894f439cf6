package billing

import (
	"time"

	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
)

// Payment is one settled invoice, recorded when the gateway reports it
// paid. The unique index on the invoice id keeps redelivered invoice
// events from producing duplicate rows.
type Payment struct {
	ID       uint `gorm:"primaryKey"`
	SchoolID uint `gorm:"not null;index"`
	School   *schools.School
	PlanID   *uint
	Plan     *plans.Plan

	StripeInvoiceID      string  `gorm:"uniqueIndex"`
	StripeSubscriptionID *string
	Amount               float64
	Currency             string `gorm:"type:varchar(3)"`
	ReceiptURL           *string

	CreatedAt time.Time
}
