package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"farm/internal/domain/model"
	repo "farm/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// UUID等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// 低在庫アラート（導出ビュー、保存しない）
type LowStockAlert struct {
	FeedTypeID   string          `json:"feed_type_id"`
	FeedName     string          `json:"feed_name"`
	Code         string          `json:"code"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Severity     AlertSeverity   `json:"severity"`
}

type FeedingUsecase struct {
	typeRepo        repo.FeedTypeRepository
	consumptionRepo repo.FeedConsumptionRepository
	movementRepo    repo.FeedMovementRepository
	tx              repo.TransactionManager
	idGen           IDGenerator
	clock           Clock
}

// DI
func NewFeedingUsecase(
	typeRepo repo.FeedTypeRepository,
	consumptionRepo repo.FeedConsumptionRepository,
	movementRepo repo.FeedMovementRepository,
	tx repo.TransactionManager,
	idGen IDGenerator,
	clock Clock,
) *FeedingUsecase {
	return &FeedingUsecase{
		typeRepo:        typeRepo,
		consumptionRepo: consumptionRepo,
		movementRepo:    movementRepo,
		tx:              tx,
		idGen:           idGen,
		clock:           clock,
	}
}

// ===== Feed Types =====

type CreateFeedTypeInput struct {
	Code                 string
	Name                 string
	Category             string
	ProteinPercentage    *decimal.Decimal
	EnergyMcalKg         *decimal.Decimal
	CrudeFiberPercentage *decimal.Decimal
	Formula              string
	Manufacturer         string
	CostPerKg            *decimal.Decimal
	MinimumStockKg       *decimal.Decimal
	MaximumStockKg       *decimal.Decimal
	InitialStockKg       *decimal.Decimal
}

func (u *FeedingUsecase) CreateFeedType(ctx context.Context, tenantID string, actorID string, in CreateFeedTypeInput) (model.FeedType, error) {
	if tenantID == "" || actorID == "" {
		return model.FeedType{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || len(code) > 50 {
		return model.FeedType{}, NewHTTPError(http.StatusBadRequest, "code required")
	}
	if name == "" || len(name) > 255 {
		return model.FeedType{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if err := validateNutrition(in.ProteinPercentage, in.EnergyMcalKg, in.CrudeFiberPercentage, in.CostPerKg); err != nil {
		return model.FeedType{}, err
	}
	if err := validateStockLevels(in.MinimumStockKg, in.MaximumStockKg, in.InitialStockKg); err != nil {
		return model.FeedType{}, err
	}

	now := u.clock.Now()
	ft := model.FeedType{
		ID:                   u.idGen.NewID(),
		TenantID:             tenantID,
		Code:                 code,
		Name:                 name,
		Category:             strings.TrimSpace(in.Category),
		ProteinPercentage:    toNullDecimal(in.ProteinPercentage),
		EnergyMcalKg:         toNullDecimal(in.EnergyMcalKg),
		CrudeFiberPercentage: toNullDecimal(in.CrudeFiberPercentage),
		Formula:              in.Formula,
		Manufacturer:         strings.TrimSpace(in.Manufacturer),
		CostPerKg:            toNullDecimal(in.CostPerKg),
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//code重複チェック（テナント内で一意）
		if _, err := r.FeedTypes().FindByCode(ctx, tenantID, code); err == nil {
			return NewHTTPError(http.StatusConflict, "feed type code already exists")
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		created, err := r.FeedTypes().Create(ctx, ft)
		if err != nil {
			return err
		}
		ft = created

		//在庫情報が指定されていなければ在庫行は作らない（初回のプラス移動で遅延作成）
		if in.InitialStockKg == nil && in.MinimumStockKg == nil && in.MaximumStockKg == nil {
			return nil
		}

		initial := decimal.Zero
		if in.InitialStockKg != nil {
			initial = *in.InitialStockKg
		}

		inv := model.FeedInventory{
			ID:             u.idGen.NewID(),
			TenantID:       tenantID,
			FeedTypeID:     ft.ID,
			CurrentStockKg: initial,
			MinimumStockKg: toNullDecimal(in.MinimumStockKg),
			MaximumStockKg: toNullDecimal(in.MaximumStockKg),
		}
		createdInv, err := r.FeedInventory().Create(ctx, inv)
		if err != nil {
			return err
		}
		ft.Inventory = &createdInv

		//初期在庫があれば開始分の移動履歴も同じTxで残す
		if initial.IsPositive() {
			mv := model.FeedMovement{
				ID:           u.idGen.NewID(),
				TenantID:     tenantID,
				FeedTypeID:   ft.ID,
				MovementType: model.MovementAdjustmentIn,
				QuantityKg:   initial,
				MovementDate: now,
				Notes:        "initial inventory on feed type creation",
				RecordedBy:   actorID,
			}
			if _, err := r.FeedMovements().Create(ctx, mv); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return model.FeedType{}, err
		}
		return model.FeedType{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ft, nil
}

type UpdateFeedTypeInput struct {
	Name                 *string
	Category             *string
	ProteinPercentage    *decimal.Decimal
	EnergyMcalKg         *decimal.Decimal
	CrudeFiberPercentage *decimal.Decimal
	Formula              *string
	Manufacturer         *string
	CostPerKg            *decimal.Decimal
	MinimumStockKg       *decimal.Decimal
	MaximumStockKg       *decimal.Decimal
}

func (u *FeedingUsecase) UpdateFeedType(ctx context.Context, tenantID string, id string, in UpdateFeedTypeInput) (model.FeedType, error) {
	if tenantID == "" {
		return model.FeedType{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id == "" {
		return model.FeedType{}, NewHTTPError(http.StatusBadRequest, "invalid feed type id")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.FeedType{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if err := validateNutrition(in.ProteinPercentage, in.EnergyMcalKg, in.CrudeFiberPercentage, in.CostPerKg); err != nil {
		return model.FeedType{}, err
	}
	if err := validateStockLevels(in.MinimumStockKg, in.MaximumStockKg, nil); err != nil {
		return model.FeedType{}, err
	}

	var out model.FeedType
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ft, err := r.FeedTypes().FindByID(ctx, tenantID, id)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "feed type not found")
		}
		if err != nil {
			return err
		}

		if in.Name != nil {
			ft.Name = strings.TrimSpace(*in.Name)
		}
		if in.Category != nil {
			ft.Category = strings.TrimSpace(*in.Category)
		}
		if in.ProteinPercentage != nil {
			ft.ProteinPercentage = toNullDecimal(in.ProteinPercentage)
		}
		if in.EnergyMcalKg != nil {
			ft.EnergyMcalKg = toNullDecimal(in.EnergyMcalKg)
		}
		if in.CrudeFiberPercentage != nil {
			ft.CrudeFiberPercentage = toNullDecimal(in.CrudeFiberPercentage)
		}
		if in.Formula != nil {
			ft.Formula = *in.Formula
		}
		if in.Manufacturer != nil {
			ft.Manufacturer = strings.TrimSpace(*in.Manufacturer)
		}
		if in.CostPerKg != nil {
			ft.CostPerKg = toNullDecimal(in.CostPerKg)
		}

		if err := r.FeedTypes().Update(ctx, ft); err != nil {
			return err
		}

		//閾値の指定があるときは既存在庫を更新、無ければ在庫ゼロで行を作る
		//黙って捨てることはしない
		if in.MinimumStockKg != nil || in.MaximumStockKg != nil {
			inv, err := r.FeedInventory().FindByFeedType(ctx, tenantID, ft.ID)
			switch {
			case err == nil:
				if err := r.FeedInventory().UpdateThresholds(ctx, inv.ID, in.MinimumStockKg, in.MaximumStockKg); err != nil {
					return err
				}
			case errors.Is(err, repo.ErrNotFound):
				created, err := r.FeedInventory().Create(ctx, model.FeedInventory{
					ID:             u.idGen.NewID(),
					TenantID:       tenantID,
					FeedTypeID:     ft.ID,
					CurrentStockKg: decimal.Zero,
					MinimumStockKg: toNullDecimal(in.MinimumStockKg),
					MaximumStockKg: toNullDecimal(in.MaximumStockKg),
				})
				if err != nil {
					return err
				}
				ft.Inventory = &created
			default:
				return err
			}
		}

		out = ft
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return model.FeedType{}, err
		}
		return model.FeedType{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return out, nil
}

func (u *FeedingUsecase) DeleteFeedType(ctx context.Context, tenantID string, id string) error {
	if tenantID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid feed type id")
	}

	//論理削除のみ。在庫・移動履歴は残る
	err := u.typeRepo.Deactivate(ctx, tenantID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "feed type not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *FeedingUsecase) GetFeedTypes(ctx context.Context, tenantID string) ([]model.FeedType, error) {
	if tenantID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	types, err := u.typeRepo.ListActiveWithInventory(ctx, tenantID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return types, nil
}

// ===== Movements =====

type AddMovementInput struct {
	FeedTypeID    string
	MovementType  model.MovementType
	QuantityKg    decimal.Decimal
	MovementDate  time.Time
	UnitCost      *decimal.Decimal
	TotalCost     *decimal.Decimal
	Supplier      string
	InvoiceNumber string
	Notes         string
}

// AddMovementは移動履歴の追記と在庫への符号付き反映を1つのTxで行う
func (u *FeedingUsecase) AddMovement(ctx context.Context, tenantID string, actorID string, in AddMovementInput) (model.FeedMovement, error) {
	if tenantID == "" || actorID == "" {
		return model.FeedMovement{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.FeedTypeID == "" {
		return model.FeedMovement{}, NewHTTPError(http.StatusBadRequest, "feed_type_id required")
	}
	if !in.MovementType.IsValid() {
		return model.FeedMovement{}, NewHTTPError(http.StatusBadRequest, "invalid movement type")
	}
	if !in.QuantityKg.IsPositive() {
		return model.FeedMovement{}, NewHTTPError(http.StatusBadRequest, "quantity_kg must be > 0")
	}
	if in.MovementDate.IsZero() {
		return model.FeedMovement{}, NewHTTPError(http.StatusBadRequest, "movement_date required")
	}
	if in.UnitCost != nil && !in.UnitCost.IsPositive() {
		return model.FeedMovement{}, NewHTTPError(http.StatusBadRequest, "unit_cost must be > 0")
	}

	mv := model.FeedMovement{
		ID:            u.idGen.NewID(),
		TenantID:      tenantID,
		FeedTypeID:    in.FeedTypeID,
		MovementType:  in.MovementType,
		QuantityKg:    in.QuantityKg,
		MovementDate:  in.MovementDate,
		UnitCost:      toNullDecimal(in.UnitCost),
		TotalCost:     toNullDecimal(in.TotalCost),
		Supplier:      strings.TrimSpace(in.Supplier),
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		Notes:         in.Notes,
		RecordedBy:    actorID,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.FeedTypes().FindByID(ctx, tenantID, in.FeedTypeID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "feed type not found")
			}
			return err
		}

		created, err := r.FeedMovements().Create(ctx, mv)
		if err != nil {
			return err
		}
		mv = created

		inv, err := r.FeedInventory().FindByFeedType(ctx, tenantID, in.FeedTypeID)
		if errors.Is(err, repo.ErrNotFound) {
			//在庫行がまだ無い。マイナス方向は拒否、プラス方向は遅延作成
			if in.MovementType.IsOutbound() {
				return NewHTTPError(http.StatusConflict, "cannot reduce stock from non-existent inventory")
			}
			newInv := model.FeedInventory{
				ID:             u.idGen.NewID(),
				TenantID:       tenantID,
				FeedTypeID:     in.FeedTypeID,
				CurrentStockKg: in.QuantityKg,
			}
			if in.MovementType == model.MovementPurchase {
				d := in.MovementDate
				newInv.LastPurchaseDate = &d
				newInv.LastPurchasePrice = toNullDecimal(in.UnitCost)
			}
			if _, err := r.FeedInventory().Create(ctx, newInv); err != nil {
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}

		if in.MovementType.IsOutbound() {
			ok, err := r.FeedInventory().DecreaseStockIfEnough(ctx, inv.ID, in.QuantityKg)
			if err != nil {
				return err
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock")
			}
		} else {
			if err := r.FeedInventory().AddStock(ctx, inv.ID, in.QuantityKg); err != nil {
				return err
			}
		}

		if in.MovementType == model.MovementPurchase {
			if err := r.FeedInventory().SetPurchaseInfo(ctx, inv.ID, in.MovementDate, toNullDecimal(in.UnitCost)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return model.FeedMovement{}, err
		}
		return model.FeedMovement{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return mv, nil
}

func (u *FeedingUsecase) GetMovementHistory(ctx context.Context, tenantID string, feedTypeID string) ([]model.FeedMovement, error) {
	if tenantID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if feedTypeID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "feed_type_id required")
	}

	movements, err := u.movementRepo.ListByFeedType(ctx, tenantID, feedTypeID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return movements, nil
}

// ===== Consumption =====

type RegisterConsumptionInput struct {
	FeedTypeID      string
	ConsumptionDate time.Time
	QuantityKg      decimal.Decimal
	PenID           *string
	BatchID         *string
	AnimalID        *string
	NumberOfAnimals *int
	Notes           string
}

// RegisterConsumptionは在庫チェック・消費記録・在庫減算を1つのTxで行う
// チェックと減算はDecreaseStockIfEnoughで1文にまとまっているため、
// 並行する消費同士が同じ在庫を二重に引き落とすことはない
func (u *FeedingUsecase) RegisterConsumption(ctx context.Context, tenantID string, actorID string, in RegisterConsumptionInput) (model.FeedConsumption, error) {
	if tenantID == "" || actorID == "" {
		return model.FeedConsumption{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.FeedTypeID == "" {
		return model.FeedConsumption{}, NewHTTPError(http.StatusBadRequest, "feed_type_id required")
	}
	if !in.QuantityKg.IsPositive() {
		return model.FeedConsumption{}, NewHTTPError(http.StatusBadRequest, "quantity_kg must be > 0")
	}
	if in.ConsumptionDate.IsZero() {
		return model.FeedConsumption{}, NewHTTPError(http.StatusBadRequest, "consumption_date required")
	}
	if in.NumberOfAnimals != nil && *in.NumberOfAnimals <= 0 {
		return model.FeedConsumption{}, NewHTTPError(http.StatusBadRequest, "number_of_animals must be > 0")
	}

	fc := model.FeedConsumption{
		ID:              u.idGen.NewID(),
		TenantID:        tenantID,
		FeedTypeID:      in.FeedTypeID,
		ConsumptionDate: in.ConsumptionDate,
		QuantityKg:      in.QuantityKg,
		PenID:           in.PenID,
		BatchID:         in.BatchID,
		AnimalID:        in.AnimalID,
		NumberOfAnimals: in.NumberOfAnimals,
		Notes:           in.Notes,
		RecordedBy:      actorID,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.FeedInventory().FindByFeedType(ctx, tenantID, in.FeedTypeID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "no inventory record found for this feed type")
		}
		if err != nil {
			return err
		}

		ok, err := r.FeedInventory().DecreaseStockIfEnough(ctx, inv.ID, in.QuantityKg)
		if err != nil {
			return err
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, fmt.Sprintf("insufficient stock. available: %skg", inv.CurrentStockKg))
		}

		created, err := r.FeedConsumptions().Create(ctx, fc)
		if err != nil {
			return err
		}
		fc = created

		//ペン指定かつ頭数未指定なら、在籍中の有効頭数を数えて記録に反映する
		//頭数按分そのものは保存しない（quantity / countで集計側が導出）
		if in.PenID != nil && in.NumberOfAnimals == nil {
			n, err := r.Animals().CountActiveInPen(ctx, tenantID, *in.PenID)
			if err != nil {
				return err
			}
			if n > 0 {
				count := int(n)
				if err := r.FeedConsumptions().SetNumberOfAnimals(ctx, fc.ID, count); err != nil {
					return err
				}
				fc.NumberOfAnimals = &count
			}
		}

		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return model.FeedConsumption{}, err
		}
		return model.FeedConsumption{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return fc, nil
}

type ConsumptionHistoryInput struct {
	PenID   *string
	BatchID *string
}

func (u *FeedingUsecase) GetConsumptionHistory(ctx context.Context, tenantID string, in ConsumptionHistoryInput) ([]model.FeedConsumption, error) {
	if tenantID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	records, err := u.consumptionRepo.List(ctx, tenantID, repo.ConsumptionFilter{
		PenID:   in.PenID,
		BatchID: in.BatchID,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return records, nil
}

// ===== Alerts =====

// 閾値が未設定（または0）のタイプは「アラート対象外」であり、常時criticalではない
func (u *FeedingUsecase) GetLowStockAlerts(ctx context.Context, tenantID string) ([]LowStockAlert, error) {
	if tenantID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	types, err := u.typeRepo.ListActiveWithInventory(ctx, tenantID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	alerts := []LowStockAlert{}
	for _, t := range types {
		inv := t.Inventory
		if inv == nil {
			//在庫行が無い＝未設定扱い
			continue
		}
		if !inv.MinimumStockKg.Valid || !inv.MinimumStockKg.Decimal.IsPositive() {
			continue
		}

		current := inv.CurrentStockKg
		min := inv.MinimumStockKg.Decimal
		if current.GreaterThan(min) {
			continue
		}

		severity := SeverityWarning
		if current.IsZero() {
			severity = SeverityCritical
		}
		alerts = append(alerts, LowStockAlert{
			FeedTypeID:   t.ID,
			FeedName:     t.Name,
			Code:         t.Code,
			CurrentStock: current,
			MinimumStock: min,
			Severity:     severity,
		})
	}

	return alerts, nil
}

// ===== helpers =====

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func validateNutrition(protein, energy, fiber, cost *decimal.Decimal) error {
	hundred := decimal.NewFromInt(100)

	if protein != nil && (protein.IsNegative() || protein.GreaterThan(hundred)) {
		return NewHTTPError(http.StatusBadRequest, "protein_percentage must be between 0 and 100")
	}
	if fiber != nil && (fiber.IsNegative() || fiber.GreaterThan(hundred)) {
		return NewHTTPError(http.StatusBadRequest, "crude_fiber_percentage must be between 0 and 100")
	}
	if energy != nil && energy.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "energy_mcal_kg must be >= 0")
	}
	if cost != nil && !cost.IsPositive() {
		return NewHTTPError(http.StatusBadRequest, "cost_per_kg must be > 0")
	}
	return nil
}

func validateStockLevels(min, max, initial *decimal.Decimal) error {
	if min != nil && min.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "minimum_stock_kg must be >= 0")
	}
	if max != nil && max.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "maximum_stock_kg must be >= 0")
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return NewHTTPError(http.StatusBadRequest, "minimum_stock_kg must be <= maximum_stock_kg")
	}
	if initial != nil && initial.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "initial_stock_kg must be >= 0")
	}
	return nil
}
