package repository

import (
	"context"

	"farm/internal/domain/model"

	"gorm.io/gorm"
)

type AnimalGormRepository struct {
	db *gorm.DB
}

// DI
func NewAnimalGormRepository(db *gorm.DB) *AnimalGormRepository {
	return &AnimalGormRepository{db: db}
}

// ペン在籍中の有効頭数。売却・死亡は除外する
func (r *AnimalGormRepository) CountActiveInPen(ctx context.Context, tenantID string, penID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Animal{}).
		Where("tenant_id = ? AND current_pen_id = ? AND is_active = ?", tenantID, penID, true).
		Where("current_status NOT IN ?", []string{model.AnimalStatusSold, model.AnimalStatusDead}).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
