package validator

import (
	"context"
	"regexp"
	"strings"

	auth "farm/internal/usecase/auth_usecase"
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.Validator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in auth.RegisterUserInput) error {
	email := strings.TrimSpace(in.Email)

	// 必須チェック
	if email == "" || in.Password == "" {
		return auth.ErrInvalidEmailFormat
	}

	// email形式
	if !isEmailLike(email) {
		return auth.ErrInvalidEmailFormat
	}

	// パスワード最低文字数（MVP: 8）
	if len(in.Password) < 8 {
		return auth.ErrPasswordTooShort
	}

	// テナント情報は必須（新規登録は農場アカウント作成を伴う）
	if strings.TrimSpace(in.TenantName) == "" || strings.TrimSpace(in.TenantSubdomain) == "" {
		return auth.ErrTenantRequired
	}
	if !isSubdomainLike(strings.TrimSpace(in.TenantSubdomain)) {
		return auth.ErrTenantRequired
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return auth.ErrInvalidEmailFormat
	}

	// email形式
	if !isEmailLike(email) {
		return auth.ErrInvalidEmailFormat
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}

// サブドメインは英数とハイフンのみ
func isSubdomainLike(s string) bool {
	re := regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	return re.MatchString(s)
}
