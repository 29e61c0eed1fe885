package repository

import (
	"context"

	"farm/internal/domain/model"
)

// 移動履歴は追記のみ
type FeedMovementRepository interface {
	Create(ctx context.Context, mv model.FeedMovement) (model.FeedMovement, error)
	ListByFeedType(ctx context.Context, tenantID string, feedTypeID string) ([]model.FeedMovement, error)
}
