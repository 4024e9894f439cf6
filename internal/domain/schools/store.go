package schools

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrSchoolNotFound = errors.New("school not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByID(ctx context.Context, id uint) (*School, error) {
	var school School
	if err := s.db.WithContext(ctx).First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return &school, nil
}

// SetStripeCustomerID persists the gateway customer ref iff none is set
// yet. A concurrent request that already set it wins silently; the
// guard in the WHERE clause makes the race benign.
func (s *Store) SetStripeCustomerID(ctx context.Context, schoolID uint, customerID string) error {
	return s.db.WithContext(ctx).
		Model(&School{}).
		Where("id = ? AND stripe_customer_id IS NULL", schoolID).
		Update("stripe_customer_id", customerID).Error
}
