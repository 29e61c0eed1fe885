package handler

import (
	"errors"
	"net/http"

	auth "farm/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
}

// DIコンストラクタ
func NewAuthHandler(registerUC *auth.RegisterUserUsecase, loginUC *auth.LoginUsecase) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
	}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	TenantName      string `json:"tenant_name"`
	TenantSubdomain string `json:"tenant_subdomain"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		TenantName:      req.TenantName,
		TenantSubdomain: req.TenantSubdomain,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// auth usecaseのsentinelエラーをHTTPへ写す
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmailFormat),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrTenantRequired):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailAlreadyExists),
		errors.Is(err, auth.ErrSubdomainTaken):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUserInactive):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
