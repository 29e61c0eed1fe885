package repository

import (
	"context"

	"farm/internal/domain/model"
	repo "farm/internal/repository"

	"gorm.io/gorm"
)

type FeedConsumptionGormRepository struct {
	db *gorm.DB
}

// DI
func NewFeedConsumptionGormRepository(db *gorm.DB) *FeedConsumptionGormRepository {
	return &FeedConsumptionGormRepository{db: db}
}

// 消費記録作成
func (r *FeedConsumptionGormRepository) Create(ctx context.Context, fc model.FeedConsumption) (model.FeedConsumption, error) {
	if err := r.db.WithContext(ctx).Create(&fc).Error; err != nil {
		return model.FeedConsumption{}, err
	}
	return fc, nil
}

// ペン頭数の確定
func (r *FeedConsumptionGormRepository) SetNumberOfAnimals(ctx context.Context, id string, n int) error {
	res := r.db.WithContext(ctx).
		Model(&model.FeedConsumption{}).
		Where("id = ?", id).
		Update("number_of_animals", n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 消費履歴をペン/バッチで絞って新しい順に返す
func (r *FeedConsumptionGormRepository) List(ctx context.Context, tenantID string, f repo.ConsumptionFilter) ([]model.FeedConsumption, error) {
	var records []model.FeedConsumption

	tx := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("FeedType")

	if f.PenID != nil {
		tx = tx.Where("pen_id = ?", *f.PenID)
	}
	if f.BatchID != nil {
		tx = tx.Where("batch_id = ?", *f.BatchID)
	}

	err := tx.Order("consumption_date desc").Order("created_at desc").Find(&records).Error
	if err != nil {
		return []model.FeedConsumption{}, err
	}
	return records, nil
}
