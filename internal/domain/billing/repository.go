package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Repository is the persistence boundary for subscription rows. Methods
// take the database handle explicitly so the processor can run several
// of them inside one transaction; pass repo.DB() outside of one.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn atomically. The deactivate-then-create compound
// used on checkout completion must go through here: a reader must never
// observe zero or two entitled rows for a school that has exactly one.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// DeactivateActiveFor closes out every row still counting as an
// entitlement (or owing money) for the school: CANCELED with the given
// end date.
func (r *Repository) DeactivateActiveFor(ctx context.Context, tx *gorm.DB, schoolID uint, endedAt time.Time) error {
	return tx.WithContext(ctx).
		Model(&SchoolSubscription{}).
		Where("school_id = ? AND status IN ?", schoolID,
			[]SubscriptionStatus{StatusActive, StatusTrialing, StatusPastDue}).
		Updates(map[string]interface{}{
			"status":   StatusCanceled,
			"end_date": endedAt,
		}).Error
}

func (r *Repository) Create(ctx context.Context, tx *gorm.DB, sub *SchoolSubscription) error {
	if err := tx.WithContext(ctx).Create(sub).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrGatewayRefConflict
		}
		return err
	}
	return nil
}

func (r *Repository) FindByGatewayRef(ctx context.Context, tx *gorm.DB, ref string) (*SchoolSubscription, error) {
	var sub SchoolSubscription
	err := tx.WithContext(ctx).
		Where("stripe_subscription_id = ?", ref).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchSubscription
		}
		return nil, err
	}
	return &sub, nil
}

// UpdateByGatewayRef patches the row keyed by the gateway reference.
// Last writer wins: the gateway is the source of truth and redelivers a
// consistent final state.
func (r *Repository) UpdateByGatewayRef(ctx context.Context, tx *gorm.DB, ref string, patch map[string]interface{}) error {
	res := tx.WithContext(ctx).
		Model(&SchoolSubscription{}).
		Where("stripe_subscription_id = ?", ref).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoSuchSubscription
	}
	return nil
}

// FindCurrent returns the single subscription entitling the school
// right now: entitled status, period started, not yet ended, newest
// first. A miss is ErrSubscriptionNotFound, which callers treat as "no
// entitlement", not as a failure.
func (r *Repository) FindCurrent(ctx context.Context, schoolID uint) (*SchoolSubscription, error) {
	now := time.Now()
	var sub SchoolSubscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("school_id = ? AND status IN ?", schoolID,
			[]SubscriptionStatus{StatusActive, StatusTrialing}).
		Where("current_period_start <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// RecordPayment inserts a payment row, swallowing replays of an
// invoice id we already stored.
func (r *Repository) RecordPayment(ctx context.Context, tx *gorm.DB, p *Payment) error {
	err := tx.WithContext(ctx).Create(p).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *Repository) ListPayments(ctx context.Context, schoolID uint) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("school_id = ?", schoolID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// isUniqueViolation matches gorm's portable duplicate-key error plus
// the raw strings postgres and sqlite produce, since the test suite
// runs on sqlite while production runs on postgres.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
