package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"farm/internal/domain/model"
	repo "farm/internal/repository"
	"farm/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type FeedTypeRepoMock struct{ mock.Mock }

func (m *FeedTypeRepoMock) ListActiveWithInventory(ctx context.Context, tenantID string) ([]model.FeedType, error) {
	args := m.Called(ctx, tenantID)
	types, _ := args.Get(0).([]model.FeedType)
	return types, args.Error(1)
}

func (m *FeedTypeRepoMock) FindByID(ctx context.Context, tenantID string, id string) (model.FeedType, error) {
	args := m.Called(ctx, tenantID, id)
	ft, _ := args.Get(0).(model.FeedType)
	return ft, args.Error(1)
}

func (m *FeedTypeRepoMock) FindByCode(ctx context.Context, tenantID string, code string) (model.FeedType, error) {
	args := m.Called(ctx, tenantID, code)
	ft, _ := args.Get(0).(model.FeedType)
	return ft, args.Error(1)
}

func (m *FeedTypeRepoMock) Create(ctx context.Context, ft model.FeedType) (model.FeedType, error) {
	args := m.Called(ctx, ft)
	created, _ := args.Get(0).(model.FeedType)
	return created, args.Error(1)
}

func (m *FeedTypeRepoMock) Update(ctx context.Context, ft model.FeedType) error {
	args := m.Called(ctx, ft)
	return args.Error(0)
}

func (m *FeedTypeRepoMock) Deactivate(ctx context.Context, tenantID string, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type FeedInventoryRepoMock struct{ mock.Mock }

func (m *FeedInventoryRepoMock) FindByFeedType(ctx context.Context, tenantID string, feedTypeID string) (model.FeedInventory, error) {
	args := m.Called(ctx, tenantID, feedTypeID)
	inv, _ := args.Get(0).(model.FeedInventory)
	return inv, args.Error(1)
}

func (m *FeedInventoryRepoMock) Create(ctx context.Context, inv model.FeedInventory) (model.FeedInventory, error) {
	args := m.Called(ctx, inv)
	created, _ := args.Get(0).(model.FeedInventory)
	return created, args.Error(1)
}

func (m *FeedInventoryRepoMock) AddStock(ctx context.Context, id string, qty decimal.Decimal) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *FeedInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, id string, qty decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *FeedInventoryRepoMock) UpdateThresholds(ctx context.Context, id string, minKg *decimal.Decimal, maxKg *decimal.Decimal) error {
	args := m.Called(ctx, id, minKg, maxKg)
	return args.Error(0)
}

func (m *FeedInventoryRepoMock) SetPurchaseInfo(ctx context.Context, id string, date time.Time, price decimal.NullDecimal) error {
	args := m.Called(ctx, id, date, price)
	return args.Error(0)
}

type FeedMovementRepoMock struct{ mock.Mock }

func (m *FeedMovementRepoMock) Create(ctx context.Context, mv model.FeedMovement) (model.FeedMovement, error) {
	args := m.Called(ctx, mv)
	created, _ := args.Get(0).(model.FeedMovement)
	return created, args.Error(1)
}

func (m *FeedMovementRepoMock) ListByFeedType(ctx context.Context, tenantID string, feedTypeID string) ([]model.FeedMovement, error) {
	args := m.Called(ctx, tenantID, feedTypeID)
	movements, _ := args.Get(0).([]model.FeedMovement)
	return movements, args.Error(1)
}

type FeedConsumptionRepoMock struct{ mock.Mock }

func (m *FeedConsumptionRepoMock) Create(ctx context.Context, fc model.FeedConsumption) (model.FeedConsumption, error) {
	args := m.Called(ctx, fc)
	created, _ := args.Get(0).(model.FeedConsumption)
	return created, args.Error(1)
}

func (m *FeedConsumptionRepoMock) SetNumberOfAnimals(ctx context.Context, id string, n int) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *FeedConsumptionRepoMock) List(ctx context.Context, tenantID string, f repo.ConsumptionFilter) ([]model.FeedConsumption, error) {
	args := m.Called(ctx, tenantID, f)
	records, _ := args.Get(0).([]model.FeedConsumption)
	return records, args.Error(1)
}

type AnimalRepoMock struct{ mock.Mock }

func (m *AnimalRepoMock) CountActiveInPen(ctx context.Context, tenantID string, penID string) (int64, error) {
	args := m.Called(ctx, tenantID, penID)
	return args.Get(0).(int64), args.Error(1)
}

// TxReposをmockで束ねる
type txReposStub struct {
	types        *FeedTypeRepoMock
	inventory    *FeedInventoryRepoMock
	movements    *FeedMovementRepoMock
	consumptions *FeedConsumptionRepoMock
	animals      *AnimalRepoMock
}

func (s *txReposStub) FeedTypes() repo.FeedTypeRepository               { return s.types }
func (s *txReposStub) FeedInventory() repo.FeedInventoryRepository      { return s.inventory }
func (s *txReposStub) FeedMovements() repo.FeedMovementRepository       { return s.movements }
func (s *txReposStub) FeedConsumptions() repo.FeedConsumptionRepository { return s.consumptions }
func (s *txReposStub) Animals() repo.AnimalRepository                   { return s.animals }
func (s *txReposStub) Tenants() repo.TenantRepository                   { return nil }
func (s *txReposStub) Users() repo.UserRepository                       { return nil }

// Txは素通し（rollbackの検証はin-memoryのシナリオテスト側で行う）
type txManagerStub struct{ repos *txReposStub }

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type feedingFixture struct {
	types        *FeedTypeRepoMock
	inventory    *FeedInventoryRepoMock
	movements    *FeedMovementRepoMock
	consumptions *FeedConsumptionRepoMock
	animals      *AnimalRepoMock
	uc           *usecase.FeedingUsecase
}

func newFeedingFixture() *feedingFixture {
	f := &feedingFixture{
		types:        new(FeedTypeRepoMock),
		inventory:    new(FeedInventoryRepoMock),
		movements:    new(FeedMovementRepoMock),
		consumptions: new(FeedConsumptionRepoMock),
		animals:      new(AnimalRepoMock),
	}
	tx := &txManagerStub{repos: &txReposStub{
		types:        f.types,
		inventory:    f.inventory,
		movements:    f.movements,
		consumptions: f.consumptions,
		animals:      f.animals,
	}}
	f.uc = usecase.NewFeedingUsecase(
		f.types, f.consumptions, f.movements, tx,
		&seqIDGen{}, &fixedClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	)
	return f
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), want)
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

const (
	tenant = "tenant-1"
	actor  = "user-1"
)

// =====================
// Feed type catalog
// =====================

func TestCreateFeedType_Unauthorized(t *testing.T) {
	f := newFeedingFixture()

	_, err := f.uc.CreateFeedType(context.Background(), "", actor, usecase.CreateFeedTypeInput{Code: "ST1", Name: "Starter"})
	assertErrContains(t, err, "unauthorized")
}

func TestCreateFeedType_CodeRequired(t *testing.T) {
	f := newFeedingFixture()

	_, err := f.uc.CreateFeedType(context.Background(), tenant, actor, usecase.CreateFeedTypeInput{Code: "  ", Name: "Starter"})
	assertErrContains(t, err, "code required")
}

func TestCreateFeedType_DuplicateCode_Conflict(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByCode", mock.Anything, tenant, "ST1").
		Return(model.FeedType{ID: "existing", Code: "ST1"}, nil)

	_, err := f.uc.CreateFeedType(context.Background(), tenant, actor, usecase.CreateFeedTypeInput{Code: "ST1", Name: "Starter"})
	assertHTTPStatus(t, err, 409)
}

// 初期在庫あり：タイプ＋在庫＋開始movementが同じTxで作られる
func TestCreateFeedType_WithInitialStock(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByCode", mock.Anything, tenant, "ST1").
		Return(model.FeedType{}, repo.ErrNotFound)

	f.types.On("Create", mock.Anything, mock.MatchedBy(func(ft model.FeedType) bool {
		return ft.TenantID == tenant && ft.Code == "ST1" && ft.Name == "Starter" && ft.IsActive
	})).Return(model.FeedType{ID: "id-1", TenantID: tenant, Code: "ST1", Name: "Starter", IsActive: true}, nil)

	f.inventory.On("Create", mock.Anything, mock.MatchedBy(func(inv model.FeedInventory) bool {
		return inv.FeedTypeID == "id-1" &&
			inv.CurrentStockKg.Equal(d("100")) &&
			inv.MinimumStockKg.Valid && inv.MinimumStockKg.Decimal.Equal(d("20"))
	})).Return(model.FeedInventory{ID: "id-2", FeedTypeID: "id-1", CurrentStockKg: d("100")}, nil)

	f.movements.On("Create", mock.Anything, mock.MatchedBy(func(mv model.FeedMovement) bool {
		return mv.FeedTypeID == "id-1" &&
			mv.MovementType == model.MovementAdjustmentIn &&
			mv.QuantityKg.Equal(d("100")) &&
			mv.RecordedBy == actor
	})).Return(model.FeedMovement{ID: "id-3"}, nil)

	ft, err := f.uc.CreateFeedType(context.Background(), tenant, actor, usecase.CreateFeedTypeInput{
		Code:           "ST1",
		Name:           "Starter",
		InitialStockKg: dp("100"),
		MinimumStockKg: dp("20"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "id-1", ft.ID)
	if assert.NotNil(t, ft.Inventory) {
		assert.True(t, ft.Inventory.CurrentStockKg.Equal(d("100")))
	}

	f.types.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
	f.movements.AssertExpectations(t)
}

// 在庫情報の指定が無ければ在庫行は作らない（遅延作成に任せる）
func TestCreateFeedType_NoStockData_NoInventoryRow(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByCode", mock.Anything, tenant, "GR1").
		Return(model.FeedType{}, repo.ErrNotFound)
	f.types.On("Create", mock.Anything, mock.AnythingOfType("model.FeedType")).
		Return(model.FeedType{ID: "id-1", Code: "GR1"}, nil)

	ft, err := f.uc.CreateFeedType(context.Background(), tenant, actor, usecase.CreateFeedTypeInput{Code: "GR1", Name: "Grower"})
	assert.NoError(t, err)
	assert.Nil(t, ft.Inventory)

	f.inventory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 初期在庫0＋閾値指定：在庫行は作るがmovementは作らない
func TestCreateFeedType_ZeroInitialStock_NoOpeningMovement(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByCode", mock.Anything, tenant, "FN1").
		Return(model.FeedType{}, repo.ErrNotFound)
	f.types.On("Create", mock.Anything, mock.AnythingOfType("model.FeedType")).
		Return(model.FeedType{ID: "id-1", Code: "FN1"}, nil)
	f.inventory.On("Create", mock.Anything, mock.MatchedBy(func(inv model.FeedInventory) bool {
		return inv.CurrentStockKg.IsZero()
	})).Return(model.FeedInventory{ID: "id-2"}, nil)

	_, err := f.uc.CreateFeedType(context.Background(), tenant, actor, usecase.CreateFeedTypeInput{
		Code:           "FN1",
		Name:           "Finisher",
		InitialStockKg: dp("0"),
	})
	assert.NoError(t, err)

	f.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateFeedType_NotFound(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "missing").
		Return(model.FeedType{}, repo.ErrNotFound)

	name := "Starter"
	_, err := f.uc.UpdateFeedType(context.Background(), tenant, "missing", usecase.UpdateFeedTypeInput{Name: &name})
	assertHTTPStatus(t, err, 404)
}

// 閾値指定あり・在庫行あり：既存行の閾値を更新する
func TestUpdateFeedType_ThresholdsUpdateExisting(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1", TenantID: tenant, Code: "ST1", Name: "Starter"}, nil)
	f.types.On("Update", mock.Anything, mock.AnythingOfType("model.FeedType")).Return(nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("50")}, nil)
	f.inventory.On("UpdateThresholds", mock.Anything, "inv-1", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.UpdateFeedType(context.Background(), tenant, "ft-1", usecase.UpdateFeedTypeInput{
		MinimumStockKg: dp("15"),
	})
	assert.NoError(t, err)

	f.inventory.AssertExpectations(t)
	f.inventory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 閾値指定あり・在庫行なし：在庫ゼロの行を作る。黙って捨てない
func TestUpdateFeedType_ThresholdsCreateZeroStockRow(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1", TenantID: tenant, Code: "ST1", Name: "Starter"}, nil)
	f.types.On("Update", mock.Anything, mock.AnythingOfType("model.FeedType")).Return(nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{}, repo.ErrNotFound)
	f.inventory.On("Create", mock.Anything, mock.MatchedBy(func(inv model.FeedInventory) bool {
		return inv.FeedTypeID == "ft-1" &&
			inv.CurrentStockKg.IsZero() &&
			inv.MinimumStockKg.Valid && inv.MinimumStockKg.Decimal.Equal(d("15"))
	})).Return(model.FeedInventory{ID: "inv-1"}, nil)

	_, err := f.uc.UpdateFeedType(context.Background(), tenant, "ft-1", usecase.UpdateFeedTypeInput{
		MinimumStockKg: dp("15"),
	})
	assert.NoError(t, err)

	f.inventory.AssertExpectations(t)
}

func TestDeleteFeedType_SoftDeactivate(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("Deactivate", mock.Anything, tenant, "ft-1").Return(nil)

	err := f.uc.DeleteFeedType(context.Background(), tenant, "ft-1")
	assert.NoError(t, err)

	f.types.AssertExpectations(t)
}

func TestDeleteFeedType_NotFound(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("Deactivate", mock.Anything, tenant, "missing").Return(repo.ErrNotFound)

	err := f.uc.DeleteFeedType(context.Background(), tenant, "missing")
	assertHTTPStatus(t, err, 404)
}

// =====================
// Movements
// =====================

func TestAddMovement_InvalidType(t *testing.T) {
	f := newFeedingFixture()

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: "transfer",
		QuantityKg:   d("10"),
		MovementDate: time.Now(),
	})
	assertErrContains(t, err, "invalid movement type")
}

func TestAddMovement_QuantityMustBePositive(t *testing.T) {
	f := newFeedingFixture()

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: model.MovementPurchase,
		QuantityKg:   d("0"),
		MovementDate: time.Now(),
	})
	assertErrContains(t, err, "quantity_kg must be > 0")
}

// 在庫行が無いのに減算方向：Conflictで拒否し、在庫行も作らない
func TestAddMovement_OutWithoutInventory_Conflict(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1"}, nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("model.FeedMovement")).
		Return(model.FeedMovement{ID: "mv-1"}, nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{}, repo.ErrNotFound)

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: model.MovementOut,
		QuantityKg:   d("5"),
		MovementDate: time.Now(),
	})
	assertHTTPStatus(t, err, 409)
	assertErrContains(t, err, "cannot reduce stock from non-existent inventory")

	f.inventory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 在庫行が無いプラス方向：movement数量を開始在庫として遅延作成する
func TestAddMovement_PurchaseWithoutInventory_CreatesRow(t *testing.T) {
	f := newFeedingFixture()

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1"}, nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("model.FeedMovement")).
		Return(model.FeedMovement{ID: "mv-1", QuantityKg: d("200")}, nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{}, repo.ErrNotFound)
	f.inventory.On("Create", mock.Anything, mock.MatchedBy(func(inv model.FeedInventory) bool {
		return inv.FeedTypeID == "ft-1" &&
			inv.CurrentStockKg.Equal(d("200")) &&
			inv.LastPurchaseDate != nil && inv.LastPurchaseDate.Equal(date) &&
			inv.LastPurchasePrice.Valid && inv.LastPurchasePrice.Decimal.Equal(d("1.50"))
	})).Return(model.FeedInventory{ID: "inv-1"}, nil)

	mv, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: model.MovementPurchase,
		QuantityKg:   d("200"),
		MovementDate: date,
		UnitCost:     dp("1.50"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "mv-1", mv.ID)

	f.inventory.AssertExpectations(t)
	f.inventory.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
}

// 減算方向で残量不足：Conflict
func TestAddMovement_OutboundInsufficient_Conflict(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1"}, nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("model.FeedMovement")).
		Return(model.FeedMovement{ID: "mv-1"}, nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("3")}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, "inv-1", d("5")).
		Return(false, nil)

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: model.MovementAdjustmentOut,
		QuantityKg:   d("5"),
		MovementDate: time.Now(),
	})
	assertHTTPStatus(t, err, 409)
	assertErrContains(t, err, "insufficient stock")
}

// purchaseは在庫加算に加えて最終仕入日・価格も更新する
func TestAddMovement_PurchaseUpdatesLastPurchaseInfo(t *testing.T) {
	f := newFeedingFixture()

	date := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1"}, nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("model.FeedMovement")).
		Return(model.FeedMovement{ID: "mv-1"}, nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("10")}, nil)
	f.inventory.On("AddStock", mock.Anything, "inv-1", d("40")).Return(nil)
	f.inventory.On("SetPurchaseInfo", mock.Anything, "inv-1", date,
		decimal.NullDecimal{Decimal: d("2.10"), Valid: true}).Return(nil)

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: model.MovementPurchase,
		QuantityKg:   d("40"),
		MovementDate: date,
		UnitCost:     dp("2.10"),
	})
	assert.NoError(t, err)

	f.inventory.AssertExpectations(t)
}

// adjustment_inは加算のみ。仕入情報は触らない
func TestAddMovement_AdjustmentIn_DoesNotTouchPurchaseInfo(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "ft-1").
		Return(model.FeedType{ID: "ft-1"}, nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("model.FeedMovement")).
		Return(model.FeedMovement{ID: "mv-1"}, nil)
	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("10")}, nil)
	f.inventory.On("AddStock", mock.Anything, "inv-1", d("5")).Return(nil)

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "ft-1",
		MovementType: model.MovementAdjustmentIn,
		QuantityKg:   d("5"),
		MovementDate: time.Now(),
	})
	assert.NoError(t, err)

	f.inventory.AssertNotCalled(t, "SetPurchaseInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddMovement_FeedTypeNotFound(t *testing.T) {
	f := newFeedingFixture()

	f.types.On("FindByID", mock.Anything, tenant, "missing").
		Return(model.FeedType{}, repo.ErrNotFound)

	_, err := f.uc.AddMovement(context.Background(), tenant, actor, usecase.AddMovementInput{
		FeedTypeID:   "missing",
		MovementType: model.MovementPurchase,
		QuantityKg:   d("10"),
		MovementDate: time.Now(),
	})
	assertHTTPStatus(t, err, 404)
}

// =====================
// Consumption
// =====================

func TestRegisterConsumption_NoInventory_NotFound(t *testing.T) {
	f := newFeedingFixture()

	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{}, repo.ErrNotFound)

	_, err := f.uc.RegisterConsumption(context.Background(), tenant, actor, usecase.RegisterConsumptionInput{
		FeedTypeID:      "ft-1",
		ConsumptionDate: time.Now(),
		QuantityKg:      d("10"),
	})
	assertHTTPStatus(t, err, 404)

	f.consumptions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 残量不足：Conflictで拒否し、消費記録は作られない
func TestRegisterConsumption_InsufficientStock_Conflict(t *testing.T) {
	f := newFeedingFixture()

	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("5")}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, "inv-1", d("10")).
		Return(false, nil)

	_, err := f.uc.RegisterConsumption(context.Background(), tenant, actor, usecase.RegisterConsumptionInput{
		FeedTypeID:      "ft-1",
		ConsumptionDate: time.Now(),
		QuantityKg:      d("10"),
	})
	assertHTTPStatus(t, err, 409)
	assertErrContains(t, err, "insufficient stock")

	f.consumptions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ペン指定＋頭数未指定：在籍頭数を数えて記録に反映する
func TestRegisterConsumption_AutoAnimalCount(t *testing.T) {
	f := newFeedingFixture()

	pen := "pen-1"

	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("100")}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, "inv-1", d("20")).
		Return(true, nil)
	f.consumptions.On("Create", mock.Anything, mock.MatchedBy(func(fc model.FeedConsumption) bool {
		return fc.FeedTypeID == "ft-1" && fc.QuantityKg.Equal(d("20")) &&
			fc.PenID != nil && *fc.PenID == pen && fc.NumberOfAnimals == nil
	})).Return(model.FeedConsumption{ID: "fc-1", PenID: &pen, QuantityKg: d("20")}, nil)
	f.animals.On("CountActiveInPen", mock.Anything, tenant, pen).Return(int64(4), nil)
	f.consumptions.On("SetNumberOfAnimals", mock.Anything, "fc-1", 4).Return(nil)

	fc, err := f.uc.RegisterConsumption(context.Background(), tenant, actor, usecase.RegisterConsumptionInput{
		FeedTypeID:      "ft-1",
		ConsumptionDate: time.Now(),
		QuantityKg:      d("20"),
		PenID:           &pen,
	})
	assert.NoError(t, err)
	if assert.NotNil(t, fc.NumberOfAnimals) {
		assert.Equal(t, 4, *fc.NumberOfAnimals)
	}

	f.animals.AssertExpectations(t)
	f.consumptions.AssertExpectations(t)
}

// 頭数が明示されていれば数え直さない
func TestRegisterConsumption_ExplicitCount_SkipsLookup(t *testing.T) {
	f := newFeedingFixture()

	pen := "pen-1"
	n := 8

	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("100")}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, "inv-1", d("20")).
		Return(true, nil)
	f.consumptions.On("Create", mock.Anything, mock.AnythingOfType("model.FeedConsumption")).
		Return(model.FeedConsumption{ID: "fc-1", NumberOfAnimals: &n}, nil)

	_, err := f.uc.RegisterConsumption(context.Background(), tenant, actor, usecase.RegisterConsumptionInput{
		FeedTypeID:      "ft-1",
		ConsumptionDate: time.Now(),
		QuantityKg:      d("20"),
		PenID:           &pen,
		NumberOfAnimals: &n,
	})
	assert.NoError(t, err)

	f.animals.AssertNotCalled(t, "CountActiveInPen", mock.Anything, mock.Anything, mock.Anything)
	f.consumptions.AssertNotCalled(t, "SetNumberOfAnimals", mock.Anything, mock.Anything, mock.Anything)
}

// ペンが空なら頭数は未設定のまま
func TestRegisterConsumption_EmptyPen_LeavesCountUnset(t *testing.T) {
	f := newFeedingFixture()

	pen := "pen-1"

	f.inventory.On("FindByFeedType", mock.Anything, tenant, "ft-1").
		Return(model.FeedInventory{ID: "inv-1", CurrentStockKg: d("100")}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, "inv-1", d("20")).
		Return(true, nil)
	f.consumptions.On("Create", mock.Anything, mock.AnythingOfType("model.FeedConsumption")).
		Return(model.FeedConsumption{ID: "fc-1", PenID: &pen}, nil)
	f.animals.On("CountActiveInPen", mock.Anything, tenant, pen).Return(int64(0), nil)

	fc, err := f.uc.RegisterConsumption(context.Background(), tenant, actor, usecase.RegisterConsumptionInput{
		FeedTypeID:      "ft-1",
		ConsumptionDate: time.Now(),
		QuantityKg:      d("20"),
		PenID:           &pen,
	})
	assert.NoError(t, err)
	assert.Nil(t, fc.NumberOfAnimals)

	f.consumptions.AssertNotCalled(t, "SetNumberOfAnimals", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetConsumptionHistory_FilterPassthrough(t *testing.T) {
	f := newFeedingFixture()

	pen := "pen-1"
	f.consumptions.On("List", mock.Anything, tenant, repo.ConsumptionFilter{PenID: &pen}).
		Return([]model.FeedConsumption{{ID: "fc-1"}}, nil)

	records, err := f.uc.GetConsumptionHistory(context.Background(), tenant, usecase.ConsumptionHistoryInput{PenID: &pen})
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	f.consumptions.AssertExpectations(t)
}

// =====================
// Low stock alerts
// =====================

func invWith(current string, min string) *model.FeedInventory {
	inv := &model.FeedInventory{CurrentStockKg: d(current)}
	if min != "" {
		inv.MinimumStockKg = decimal.NullDecimal{Decimal: d(min), Valid: true}
	}
	return inv
}

func TestGetLowStockAlerts_Matrix(t *testing.T) {
	f := newFeedingFixture()

	types := []model.FeedType{
		//在庫行なし→対象外
		{ID: "a", Code: "A", Name: "A"},
		//閾値未設定→対象外（在庫ゼロでも鳴らない）
		{ID: "b", Code: "B", Name: "B", Inventory: invWith("0", "")},
		//閾値0→対象外
		{ID: "c", Code: "C", Name: "C", Inventory: invWith("0", "0")},
		//current > min→鳴らない
		{ID: "d", Code: "D", Name: "D", Inventory: invWith("30", "20")},
		//0 < current <= min→warning
		{ID: "e", Code: "E", Name: "E", Inventory: invWith("10", "20")},
		//境界：current == min→warning
		{ID: "f", Code: "F", Name: "F", Inventory: invWith("20", "20")},
		//current == 0→critical
		{ID: "g", Code: "G", Name: "G", Inventory: invWith("0", "20")},
	}
	f.types.On("ListActiveWithInventory", mock.Anything, tenant).Return(types, nil)

	alerts, err := f.uc.GetLowStockAlerts(context.Background(), tenant)
	assert.NoError(t, err)

	if assert.Len(t, alerts, 3) {
		assert.Equal(t, "e", alerts[0].FeedTypeID)
		assert.Equal(t, usecase.SeverityWarning, alerts[0].Severity)
		assert.Equal(t, "f", alerts[1].FeedTypeID)
		assert.Equal(t, usecase.SeverityWarning, alerts[1].Severity)
		assert.Equal(t, "g", alerts[2].FeedTypeID)
		assert.Equal(t, usecase.SeverityCritical, alerts[2].Severity)
		assert.True(t, alerts[2].MinimumStock.Equal(d("20")))
	}
}
