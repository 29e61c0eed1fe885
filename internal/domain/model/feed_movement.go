package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

// 在庫への符号はmovement_typeから導出する（別カラムには持たない）
const (
	MovementPurchase      MovementType = "purchase"
	MovementAdjustmentIn  MovementType = "adjustment_in"
	MovementAdjustmentOut MovementType = "adjustment_out"
	MovementOut           MovementType = "out"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchase, MovementAdjustmentIn, MovementAdjustmentOut, MovementOut:
		return true
	}
	return false
}

// 在庫を減らす種別か
func (t MovementType) IsOutbound() bool {
	return t == MovementOut || t == MovementAdjustmentOut
}

// 飼料在庫の移動履歴（追記のみ、更新しない）
type FeedMovement struct {
	ID            string              `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string              `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FeedTypeID    string              `gorm:"type:uuid;not null;index" json:"feed_type_id"`
	MovementType  MovementType        `gorm:"type:varchar(20);not null" json:"movement_type"`
	QuantityKg    decimal.Decimal     `gorm:"type:numeric(12,3);not null" json:"quantity_kg"`
	MovementDate  time.Time           `gorm:"not null" json:"movement_date"`
	UnitCost      decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"unit_cost"`
	TotalCost     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"total_cost"`
	Supplier      string              `gorm:"type:varchar(255)" json:"supplier"`
	InvoiceNumber string              `gorm:"type:varchar(100)" json:"invoice_number"`
	Notes         string              `gorm:"type:text" json:"notes"`
	RecordedBy    string              `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt     time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
}
