package billing

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&schools.School{},
		&plans.Plan{},
		&SchoolSubscription{},
		&Payment{},
	))
	return db
}

func seedSchool(t *testing.T, db *gorm.DB, name string) *schools.School {
	t.Helper()
	school := &schools.School{Name: name, ContactEmail: "office@example.org"}
	require.NoError(t, db.Create(school).Error)
	return school
}

func seedPlan(t *testing.T, db *gorm.DB, name string, price float64, cycle plans.BillingCycle) *plans.Plan {
	t.Helper()
	plan := &plans.Plan{
		Name:         name,
		PriceAmount:  price,
		Currency:     "eur",
		BillingCycle: cycle,
		Active:       true,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func seedSubscription(t *testing.T, db *gorm.DB, schoolID, planID uint, status SubscriptionStatus, ref string, start time.Time) *SchoolSubscription {
	t.Helper()
	sub := &SchoolSubscription{
		SchoolID:           schoolID,
		PlanID:             planID,
		Status:             status,
		CurrentPeriodStart: start,
		NextBillingDate:    start.AddDate(0, 1, 0),
	}
	if ref != "" {
		sub.StripeSubscriptionID = &ref
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

// entitledCount is the invariant probe: rows currently counting as an
// entitlement for the school.
func entitledCount(t *testing.T, db *gorm.DB, schoolID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&SchoolSubscription{}).
		Where("school_id = ? AND status IN ?", schoolID,
			[]SubscriptionStatus{StatusActive, StatusTrialing}).
		Count(&n).Error)
	return n
}
