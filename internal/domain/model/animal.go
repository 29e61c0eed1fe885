package model

import "time"

// 売却・死亡は在籍頭数に数えない
const (
	AnimalStatusActive = "active"
	AnimalStatusSold   = "sold"
	AnimalStatusDead   = "dead"
)

type Animal struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	TagNumber     string    `gorm:"type:varchar(50);not null" json:"tag_number"`
	CurrentPenID  *string   `gorm:"type:uuid;index" json:"current_pen_id,omitempty"`
	CurrentStatus string    `gorm:"type:varchar(20);not null;default:'active'" json:"current_status"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
