package repository

import (
	"context"
	"errors"

	"farm/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 飼料タイプの永続化（保存・取得）だけを約束。
type FeedTypeRepository interface {
	// テナント内の有効なタイプを在庫付きで返す
	ListActiveWithInventory(ctx context.Context, tenantID string) ([]model.FeedType, error)
	FindByID(ctx context.Context, tenantID string, id string) (model.FeedType, error)
	FindByCode(ctx context.Context, tenantID string, code string) (model.FeedType, error)

	Create(ctx context.Context, ft model.FeedType) (model.FeedType, error)
	Update(ctx context.Context, ft model.FeedType) error
	Deactivate(ctx context.Context, tenantID string, id string) error
}
