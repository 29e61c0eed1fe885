package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 飼料消費の記録（追記のみ）
// 頭数按分は保存しない。quantity_kg / number_of_animalsで集計側が導出する
type FeedConsumption struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        string          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FeedTypeID      string          `gorm:"type:uuid;not null;index" json:"feed_type_id"`
	ConsumptionDate time.Time       `gorm:"not null;index" json:"consumption_date"`
	QuantityKg      decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity_kg"`
	PenID           *string         `gorm:"type:uuid;index" json:"pen_id,omitempty"`
	BatchID         *string         `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	AnimalID        *string         `gorm:"type:uuid" json:"animal_id,omitempty"`
	NumberOfAnimals *int            `json:"number_of_animals,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes"`
	RecordedBy      string          `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`

	FeedType *FeedType `gorm:"foreignKey:FeedTypeID" json:"feed_type,omitempty"`
}
