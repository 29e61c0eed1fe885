package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	FeedTypes() FeedTypeRepository
	FeedInventory() FeedInventoryRepository
	FeedMovements() FeedMovementRepository
	FeedConsumptions() FeedConsumptionRepository
	Animals() AnimalRepository
	Tenants() TenantRepository
	Users() UserRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
