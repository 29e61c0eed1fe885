package repository

import "context"

// 消費登録の頭数自動計算に使う読み取り専用の約束
type AnimalRepository interface {
	// ペン在籍中の有効頭数（売却・死亡は除く）
	CountActiveInPen(ctx context.Context, tenantID string, penID string) (int64, error)
}
