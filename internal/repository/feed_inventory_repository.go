package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"farm/internal/domain/model"
)

// 在庫の永続化と在庫量の増減を約束
type FeedInventoryRepository interface {
	// (tenant, feedType)の在庫行を1件取得
	FindByFeedType(ctx context.Context, tenantID string, feedTypeID string) (model.FeedInventory, error)

	Create(ctx context.Context, inv model.FeedInventory) (model.FeedInventory, error)

	// 在庫を加算
	AddStock(ctx context.Context, id string, qty decimal.Decimal) error

	// 在庫が足りるときだけ減算（check-and-decrementを1文で行う）
	DecreaseStockIfEnough(ctx context.Context, id string, qty decimal.Decimal) (bool, error)

	// 閾値の更新（nilの項目は変更しない）
	UpdateThresholds(ctx context.Context, id string, minKg *decimal.Decimal, maxKg *decimal.Decimal) error

	// 最終仕入日・価格の更新
	SetPurchaseInfo(ctx context.Context, id string, date time.Time, price decimal.NullDecimal) error
}
