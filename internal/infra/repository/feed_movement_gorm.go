package repository

import (
	"context"

	"farm/internal/domain/model"

	"gorm.io/gorm"
)

type FeedMovementGormRepository struct {
	db *gorm.DB
}

// DI
func NewFeedMovementGormRepository(db *gorm.DB) *FeedMovementGormRepository {
	return &FeedMovementGormRepository{db: db}
}

// 移動履歴作成（追記のみ）
func (r *FeedMovementGormRepository) Create(ctx context.Context, mv model.FeedMovement) (model.FeedMovement, error) {
	if err := r.db.WithContext(ctx).Create(&mv).Error; err != nil {
		return model.FeedMovement{}, err
	}
	return mv, nil
}

func (r *FeedMovementGormRepository) ListByFeedType(ctx context.Context, tenantID string, feedTypeID string) ([]model.FeedMovement, error) {
	var movements []model.FeedMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND feed_type_id = ?", tenantID, feedTypeID).
		Order("movement_date desc").Order("created_at desc").
		Find(&movements).Error
	if err != nil {
		return []model.FeedMovement{}, err
	}
	return movements, nil
}
