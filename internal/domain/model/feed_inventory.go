package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 飼料在庫（テナント×飼料タイプで1行）
// current_stock_kgは符号付き増減のみで更新し、コミット後に負になってはならない
type FeedInventory struct {
	ID                string              `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID          string              `gorm:"type:uuid;not null;uniqueIndex:idx_feed_inventory_tenant_type" json:"tenant_id"`
	FeedTypeID        string              `gorm:"type:uuid;not null;uniqueIndex:idx_feed_inventory_tenant_type" json:"feed_type_id"`
	CurrentStockKg    decimal.Decimal     `gorm:"type:numeric(12,3);not null;default:0" json:"current_stock_kg"`
	MinimumStockKg    decimal.NullDecimal `gorm:"type:numeric(12,3)" json:"minimum_stock_kg"`
	MaximumStockKg    decimal.NullDecimal `gorm:"type:numeric(12,3)" json:"maximum_stock_kg"`
	LastPurchaseDate  *time.Time          `json:"last_purchase_date,omitempty"`
	LastPurchasePrice decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"last_purchase_price"`
	CreatedAt         time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
