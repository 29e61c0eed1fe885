package handler

import (
	"net/http"
	"time"

	"farm/internal/config"
	"farm/internal/domain/model"
	"farm/internal/middleware"
	"farm/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 飼料タイプ作成の入力
type FeedTypeCreateRequest struct {
	Code                 string           `json:"code"`
	Name                 string           `json:"name"`
	Category             string           `json:"category"`
	ProteinPercentage    *decimal.Decimal `json:"protein_percentage"`
	EnergyMcalKg         *decimal.Decimal `json:"energy_mcal_kg"`
	CrudeFiberPercentage *decimal.Decimal `json:"crude_fiber_percentage"`
	Formula              string           `json:"formula"`
	Manufacturer         string           `json:"manufacturer"`
	CostPerKg            *decimal.Decimal `json:"cost_per_kg"`
	MinimumStockKg       *decimal.Decimal `json:"minimum_stock_kg"`
	MaximumStockKg       *decimal.Decimal `json:"maximum_stock_kg"`
	InitialStockKg       *decimal.Decimal `json:"initial_stock_kg"`
}

// 更新は部分更新（nilの項目は変更しない）
type FeedTypeUpdateRequest struct {
	Name                 *string          `json:"name"`
	Category             *string          `json:"category"`
	ProteinPercentage    *decimal.Decimal `json:"protein_percentage"`
	EnergyMcalKg         *decimal.Decimal `json:"energy_mcal_kg"`
	CrudeFiberPercentage *decimal.Decimal `json:"crude_fiber_percentage"`
	Formula              *string          `json:"formula"`
	Manufacturer         *string          `json:"manufacturer"`
	CostPerKg            *decimal.Decimal `json:"cost_per_kg"`
	MinimumStockKg       *decimal.Decimal `json:"minimum_stock_kg"`
	MaximumStockKg       *decimal.Decimal `json:"maximum_stock_kg"`
}

type MovementCreateRequest struct {
	FeedTypeID    string           `json:"feed_type_id"`
	MovementType  string           `json:"movement_type"`
	QuantityKg    decimal.Decimal  `json:"quantity_kg"`
	MovementDate  time.Time        `json:"movement_date"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	TotalCost     *decimal.Decimal `json:"total_cost"`
	Supplier      string           `json:"supplier"`
	InvoiceNumber string           `json:"invoice_number"`
	Notes         string           `json:"notes"`
}

type ConsumptionCreateRequest struct {
	FeedTypeID      string          `json:"feed_type_id"`
	ConsumptionDate time.Time       `json:"consumption_date"`
	QuantityKg      decimal.Decimal `json:"quantity_kg"`
	PenID           *string         `json:"pen_id"`
	BatchID         *string         `json:"batch_id"`
	AnimalID        *string         `json:"animal_id"`
	NumberOfAnimals *int            `json:"number_of_animals"`
	Notes           string          `json:"notes"`
}

// /feeding 配下をまとめる
type FeedingHandler struct {
	uc *usecase.FeedingUsecase
}

// DI
func NewFeedingHandler(uc *usecase.FeedingUsecase) *FeedingHandler {
	return &FeedingHandler{uc: uc}
}

// 認証必須のルートを登録
func (h *FeedingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/feeding")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/types", h.createType)
	g.GET("/types", h.getTypes)
	g.PUT("/types/:id", h.updateType)
	g.DELETE("/types/:id", h.deleteType)
	g.POST("/movements", h.addMovement)
	g.GET("/movements", h.getMovements)
	g.POST("/consumption", h.registerConsumption)
	g.GET("/consumption", h.getConsumption)
	g.GET("/alerts/low-stock", h.getLowStockAlerts)
}

func (h *FeedingHandler) createType(c echo.Context) error {
	var req FeedTypeCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	tenantID, userID, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	ft, err := h.uc.CreateFeedType(c.Request().Context(), tenantID, userID, usecase.CreateFeedTypeInput{
		Code:                 req.Code,
		Name:                 req.Name,
		Category:             req.Category,
		ProteinPercentage:    req.ProteinPercentage,
		EnergyMcalKg:         req.EnergyMcalKg,
		CrudeFiberPercentage: req.CrudeFiberPercentage,
		Formula:              req.Formula,
		Manufacturer:         req.Manufacturer,
		CostPerKg:            req.CostPerKg,
		MinimumStockKg:       req.MinimumStockKg,
		MaximumStockKg:       req.MaximumStockKg,
		InitialStockKg:       req.InitialStockKg,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, ft)
}

func (h *FeedingHandler) getTypes(c echo.Context) error {
	tenantID, _, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	types, err := h.uc.GetFeedTypes(c.Request().Context(), tenantID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, types)
}

func (h *FeedingHandler) updateType(c echo.Context) error {
	id := c.Param("id")

	var req FeedTypeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	tenantID, _, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	ft, err := h.uc.UpdateFeedType(c.Request().Context(), tenantID, id, usecase.UpdateFeedTypeInput{
		Name:                 req.Name,
		Category:             req.Category,
		ProteinPercentage:    req.ProteinPercentage,
		EnergyMcalKg:         req.EnergyMcalKg,
		CrudeFiberPercentage: req.CrudeFiberPercentage,
		Formula:              req.Formula,
		Manufacturer:         req.Manufacturer,
		CostPerKg:            req.CostPerKg,
		MinimumStockKg:       req.MinimumStockKg,
		MaximumStockKg:       req.MaximumStockKg,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ft)
}

func (h *FeedingHandler) deleteType(c echo.Context) error {
	id := c.Param("id")

	tenantID, _, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteFeedType(c.Request().Context(), tenantID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "feed type deleted"})
}

func (h *FeedingHandler) addMovement(c echo.Context) error {
	var req MovementCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	tenantID, userID, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	mv, err := h.uc.AddMovement(c.Request().Context(), tenantID, userID, usecase.AddMovementInput{
		FeedTypeID:    req.FeedTypeID,
		MovementType:  model.MovementType(req.MovementType),
		QuantityKg:    req.QuantityKg,
		MovementDate:  req.MovementDate,
		UnitCost:      req.UnitCost,
		TotalCost:     req.TotalCost,
		Supplier:      req.Supplier,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, mv)
}

func (h *FeedingHandler) getMovements(c echo.Context) error {
	tenantID, _, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	movements, err := h.uc.GetMovementHistory(c.Request().Context(), tenantID, c.QueryParam("feed_type_id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, movements)
}

func (h *FeedingHandler) registerConsumption(c echo.Context) error {
	var req ConsumptionCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	tenantID, userID, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	fc, err := h.uc.RegisterConsumption(c.Request().Context(), tenantID, userID, usecase.RegisterConsumptionInput{
		FeedTypeID:      req.FeedTypeID,
		ConsumptionDate: req.ConsumptionDate,
		QuantityKg:      req.QuantityKg,
		PenID:           req.PenID,
		BatchID:         req.BatchID,
		AnimalID:        req.AnimalID,
		NumberOfAnimals: req.NumberOfAnimals,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fc)
}

func (h *FeedingHandler) getConsumption(c echo.Context) error {
	tenantID, _, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in := usecase.ConsumptionHistoryInput{}
	if v := c.QueryParam("pen_id"); v != "" {
		in.PenID = &v
	}
	if v := c.QueryParam("batch_id"); v != "" {
		in.BatchID = &v
	}

	records, err := h.uc.GetConsumptionHistory(c.Request().Context(), tenantID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, records)
}

func (h *FeedingHandler) getLowStockAlerts(c echo.Context) error {
	tenantID, _, ok := getIdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	alerts, err := h.uc.GetLowStockAlerts(c.Request().Context(), tenantID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, alerts)
}

//middleware.AuthJWT が contextに保存した tenant_id / user_id を取り出す

func getIdentityFromContext(c echo.Context) (tenantID string, userID string, ok bool) {
	t, tok := c.Get(middleware.CtxTenantIDKey).(string)
	u, uok := c.Get(middleware.CtxUserIDKey).(string)
	if !tok || !uok || t == "" || u == "" {
		return "", "", false
	}
	return t, u, true
}
