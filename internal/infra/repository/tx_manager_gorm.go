package repository

import (
	"context"

	repo "farm/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	feedTypes        repo.FeedTypeRepository
	feedInventory    repo.FeedInventoryRepository
	feedMovements    repo.FeedMovementRepository
	feedConsumptions repo.FeedConsumptionRepository
	animals          repo.AnimalRepository
	tenants          repo.TenantRepository
	users            repo.UserRepository
}

func (r *txReposGorm) FeedTypes() repo.FeedTypeRepository               { return r.feedTypes }
func (r *txReposGorm) FeedInventory() repo.FeedInventoryRepository      { return r.feedInventory }
func (r *txReposGorm) FeedMovements() repo.FeedMovementRepository       { return r.feedMovements }
func (r *txReposGorm) FeedConsumptions() repo.FeedConsumptionRepository { return r.feedConsumptions }
func (r *txReposGorm) Animals() repo.AnimalRepository                   { return r.animals }
func (r *txReposGorm) Tenants() repo.TenantRepository                   { return r.tenants }
func (r *txReposGorm) Users() repo.UserRepository                       { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			feedTypes:        NewFeedTypeGormRepository(tx),
			feedInventory:    NewFeedInventoryGormRepository(tx),
			feedMovements:    NewFeedMovementGormRepository(tx),
			feedConsumptions: NewFeedConsumptionGormRepository(tx),
			animals:          NewAnimalGormRepository(tx),
			tenants:          NewTenantGormRepository(tx),
			users:            NewUserGormRepository(tx),
		}
		return fn(r)
	})
}
