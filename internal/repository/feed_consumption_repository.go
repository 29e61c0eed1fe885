package repository

import (
	"context"

	"farm/internal/domain/model"
)

// 消費履歴の検索条件
type ConsumptionFilter struct {
	PenID   *string
	BatchID *string
}

type FeedConsumptionRepository interface {
	Create(ctx context.Context, fc model.FeedConsumption) (model.FeedConsumption, error)

	// ペン頭数を後から確定させる
	SetNumberOfAnimals(ctx context.Context, id string, n int) error

	// 新しい順、飼料タイプ付き
	List(ctx context.Context, tenantID string, f ConsumptionFilter) ([]model.FeedConsumption, error)
}
