package repository

import (
	"context"
	"errors"

	"farm/internal/domain/model"
	repo "farm/internal/repository"

	"gorm.io/gorm"
)

type TenantGormRepository struct {
	db *gorm.DB
}

// DI
func NewTenantGormRepository(db *gorm.DB) *TenantGormRepository {
	return &TenantGormRepository{db: db}
}

func (r *TenantGormRepository) Create(ctx context.Context, t model.Tenant) (model.Tenant, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.Tenant{}, err
	}
	return t, nil
}

func (r *TenantGormRepository) FindBySubdomain(ctx context.Context, subdomain string) (model.Tenant, error) {
	var t model.Tenant
	err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Tenant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Tenant{}, err
	}
	return t, nil
}
