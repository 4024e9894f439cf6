package plans

import (
	"strings"
	"time"
)

// BillingCycle is the recurrence period of a plan. Only MONTHLY and
// YEARLY are supported; anything else is a catalog configuration error
// that the billing engine refuses to process.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "MONTHLY"
	CycleYearly  BillingCycle = "YEARLY"
)

// ParseBillingCycle normalizes catalog input ("monthly", "YEARLY", ...).
// The bool is false for anything that is not a supported cycle.
func ParseBillingCycle(s string) (BillingCycle, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(CycleMonthly):
		return CycleMonthly, true
	case string(CycleYearly):
		return CycleYearly, true
	}
	return "", false
}

// Plan is a catalog entry. The billing engine only reads it; catalog
// management owns the row. Price changes never retroactively alter
// existing subscriptions — the period fields on a subscription are
// derived at event time.
type Plan struct {
	ID           uint         `gorm:"primaryKey"`
	Name         string       `gorm:"not null"`
	PriceAmount  float64      `gorm:"column:price_amount;not null"`
	Currency     string       `gorm:"type:varchar(3);not null;default:'eur'"`
	BillingCycle BillingCycle `gorm:"type:varchar(10);not null"`

	// Features is a comma-separated list kept denormalized for the
	// public catalog endpoint. Caps are nil when a plan is uncapped.
	Features    string `gorm:"type:text"`
	MaxStudents *int
	MaxTeachers *int

	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceMinorUnits converts the catalog price to integer minor currency
// units (cents) the way the gateway expects it.
func (p *Plan) PriceMinorUnits() int64 {
	return int64(p.PriceAmount*100 + 0.5)
}

// IsFree reports whether a subscription to this plan starts without a
// charge, which maps to the TRIALING status on activation.
func (p *Plan) IsFree() bool {
	return p.PriceAmount == 0
}

// FeatureList splits the denormalized feature string for API output.
func (p *Plan) FeatureList() []string {
	if strings.TrimSpace(p.Features) == "" {
		return []string{}
	}
	parts := strings.Split(p.Features, ",")
	out := make([]string, 0, len(parts))
	for _, f := range parts {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
