package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 飼料タイプ（カタログ定義）
// codeはテナント内で一意。削除はis_activeを落とすだけ（履歴は残す）
type FeedType struct {
	ID                   string              `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID             string              `gorm:"type:uuid;not null;uniqueIndex:idx_feed_types_tenant_code" json:"tenant_id"`
	Code                 string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_feed_types_tenant_code" json:"code"`
	Name                 string              `gorm:"type:varchar(255);not null" json:"name"`
	Category             string              `gorm:"type:varchar(100)" json:"category"`
	ProteinPercentage    decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"protein_percentage"`
	EnergyMcalKg         decimal.NullDecimal `gorm:"type:numeric(6,2)" json:"energy_mcal_kg"`
	CrudeFiberPercentage decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"crude_fiber_percentage"`
	Formula              string              `gorm:"type:text" json:"formula"`
	Manufacturer         string              `gorm:"type:varchar(255)" json:"manufacturer"`
	CostPerKg            decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"cost_per_kg"`
	IsActive             bool                `gorm:"not null;default:true" json:"is_active"`
	CreatedAt            time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// テナント内の在庫行（0または1件）
	Inventory *FeedInventory `gorm:"foreignKey:FeedTypeID" json:"inventory,omitempty"`
}
