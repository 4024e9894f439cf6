package plans

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrPlanNotFound = errors.New("plan not found")

// Store is the catalog read path the billing engine consumes. The
// catalog itself (create/update/sync) lives elsewhere.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByID(ctx context.Context, id uint) (*Plan, error) {
	var plan Plan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *Store) ListActive(ctx context.Context) ([]Plan, error) {
	var list []Plan
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("price_amount ASC").
		Find(&list).Error
	return list, err
}
