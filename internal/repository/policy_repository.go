package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type PolicyRepository interface {
	// Единственная строка system_config.
	Get(ctx context.Context) (*model.PolicyConfig, error)
}

type GormPolicyRepository struct {
	db *gorm.DB
}

func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

func (r *GormPolicyRepository) Get(ctx context.Context) (*model.PolicyConfig, error) {
	var cfg model.PolicyConfig
	if err := r.db.WithContext(ctx).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
