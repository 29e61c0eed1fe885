package auth

import (
	"context"
	"errors"
	"time"

	"farm/internal/domain/model"
	"farm/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

// token 形
type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行する約束
// tokenにはテナントIDを含める（全APIはテナントスコープで動く）
type AccessTokenIssuer interface {
	Issue(userID string, tenantID string, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

type LoginUsecase struct {
	userRepo  repository.UserRepository
	validator Validator
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	clock     Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	validator Validator,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:  userRepo,
		validator: validator,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return out, err
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return out, err
	}
	if user == nil {
		return out, ErrInvalidCredentials
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, ErrUserInactive
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, ErrInvalidCredentials
	}

	//AccessToken発行（テナントID入り）
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.TenantID, user.Role, now)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	//出力（passwordは返さない）
	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}

	return out, nil
}
