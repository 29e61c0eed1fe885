package repository

import (
	"context"
	"errors"
	"time"

	"farm/internal/domain/model"
	repo "farm/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FeedInventoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewFeedInventoryGormRepository(db *gorm.DB) *FeedInventoryGormRepository {
	return &FeedInventoryGormRepository{db: db}
}

// (tenant, feedType)の在庫行を取得
func (r *FeedInventoryGormRepository) FindByFeedType(ctx context.Context, tenantID string, feedTypeID string) (model.FeedInventory, error) {
	var inv model.FeedInventory
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND feed_type_id = ?", tenantID, feedTypeID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FeedInventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.FeedInventory{}, err
	}
	return inv, nil
}

// 在庫行の作成（(tenant, feed_type)のユニーク制約あり）
func (r *FeedInventoryGormRepository) Create(ctx context.Context, inv model.FeedInventory) (model.FeedInventory, error) {
	if err := r.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return model.FeedInventory{}, err
	}
	return inv, nil
}

// 在庫を加算
func (r *FeedInventoryGormRepository) AddStock(ctx context.Context, id string, qty decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.FeedInventory{}).
		Where("id = ?", id).
		Update("current_stock_kg", gorm.Expr("current_stock_kg + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす
// WHEREに残量条件を入れることでcheckとdecrementを1文にし、並行実行での過剰引き落としを防ぐ
func (r *FeedInventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, id string, qty decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.FeedInventory{}).
		Where("id = ? AND current_stock_kg >= ?", id, qty).
		Update("current_stock_kg", gorm.Expr("current_stock_kg - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 閾値の更新。nilの項目は触らない
func (r *FeedInventoryGormRepository) UpdateThresholds(ctx context.Context, id string, minKg *decimal.Decimal, maxKg *decimal.Decimal) error {
	updates := map[string]interface{}{}
	if minKg != nil {
		updates["minimum_stock_kg"] = *minKg
	}
	if maxKg != nil {
		updates["maximum_stock_kg"] = *maxKg
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.FeedInventory{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 最終仕入日・価格の更新（purchase時のみ呼ばれる）
func (r *FeedInventoryGormRepository) SetPurchaseInfo(ctx context.Context, id string, date time.Time, price decimal.NullDecimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.FeedInventory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_purchase_date":  date,
			"last_purchase_price": price,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
