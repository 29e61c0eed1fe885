package repository

import (
	"context"
	"errors"

	"farm/internal/domain/model"
	repo "farm/internal/repository"

	"gorm.io/gorm"
)

type FeedTypeGormRepository struct {
	db *gorm.DB
}

// DI
func NewFeedTypeGormRepository(db *gorm.DB) *FeedTypeGormRepository {
	return &FeedTypeGormRepository{db: db}
}

// 有効なタイプのみを在庫スナップショット付きで返す
func (r *FeedTypeGormRepository) ListActiveWithInventory(ctx context.Context, tenantID string) ([]model.FeedType, error) {
	var types []model.FeedType

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Preload("Inventory", "tenant_id = ?", tenantID).
		Order("code asc").
		Find(&types).Error
	if err != nil {
		return []model.FeedType{}, err
	}

	return types, nil
}

// IDで1件取得（テナント外はErrNotFound）
func (r *FeedTypeGormRepository) FindByID(ctx context.Context, tenantID string, id string) (model.FeedType, error) {
	var ft model.FeedType
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&ft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FeedType{}, repo.ErrNotFound
	}
	if err != nil {
		return model.FeedType{}, err
	}
	return ft, nil
}

// codeで1件取得（重複チェック用）
func (r *FeedTypeGormRepository) FindByCode(ctx context.Context, tenantID string, code string) (model.FeedType, error) {
	var ft model.FeedType
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&ft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FeedType{}, repo.ErrNotFound
	}
	if err != nil {
		return model.FeedType{}, err
	}
	return ft, nil
}

// タイプの作成
func (r *FeedTypeGormRepository) Create(ctx context.Context, ft model.FeedType) (model.FeedType, error) {
	if err := r.db.WithContext(ctx).Create(&ft).Error; err != nil {
		return model.FeedType{}, err
	}
	return ft, nil
}

// タイプの更新
func (r *FeedTypeGormRepository) Update(ctx context.Context, ft model.FeedType) error {
	res := r.db.WithContext(ctx).Model(&model.FeedType{}).
		Where("id = ? AND tenant_id = ?", ft.ID, ft.TenantID).
		Updates(map[string]interface{}{
			"name":                   ft.Name,
			"category":               ft.Category,
			"protein_percentage":     ft.ProteinPercentage,
			"energy_mcal_kg":         ft.EnergyMcalKg,
			"crude_fiber_percentage": ft.CrudeFiberPercentage,
			"formula":                ft.Formula,
			"manufacturer":           ft.Manufacturer,
			"cost_per_kg":            ft.CostPerKg,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 論理削除（is_activeを落とすだけ）
func (r *FeedTypeGormRepository) Deactivate(ctx context.Context, tenantID string, id string) error {
	res := r.db.WithContext(ctx).Model(&model.FeedType{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
