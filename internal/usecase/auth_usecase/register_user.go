package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"farm/internal/domain/model"
	"farm/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
// 新規登録はテナント（農場）と最初の管理者ユーザーを同時に作る
type RegisterUserInput struct {
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Phone           string
	TenantName      string
	TenantSubdomain string
}

// 会員登録の出力
type RegisterUserOutput struct {
	Tenant model.Tenant
	User   model.User
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrTenantRequired     = errors.New("tenant information is required")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrSubdomainTaken     = errors.New("subdomain already taken")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 入力検証の約束（実装はvalidatorパッケージ）
type Validator interface {
	ValidateRegister(ctx context.Context, in RegisterUserInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RegisterUserUsecaseはテナント＋初期ユーザーの登録処理。
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	tx        repository.TransactionManager
	validator Validator
	hasher    PasswordHasher
	idGen     IDGenerator
	clock     Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	tx repository.TransactionManager,
	validator Validator,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		tx:        tx,
		validator: validator,
		hasher:    hasher,
		idGen:     idGen,
		clock:     clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return out, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	//email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return out, err
	}
	if existing != nil {
		return out, ErrEmailAlreadyExists
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()

	//テナントと最初のユーザーは同じTxで作る
	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if _, err := r.Tenants().FindBySubdomain(ctx, in.TenantSubdomain); err == nil {
			return ErrSubdomainTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		tenant, err := r.Tenants().Create(ctx, model.Tenant{
			ID:        u.idGen.NewID(),
			Name:      strings.TrimSpace(in.TenantName),
			Subdomain: strings.TrimSpace(in.TenantSubdomain),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		//テナント最初のユーザーは管理者
		user := model.User{
			ID:           u.idGen.NewID(),
			TenantID:     tenant.ID,
			Email:        email,
			PasswordHash: hashed,
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Phone:        strings.TrimSpace(in.Phone),
			Role:         model.RoleFarmAdmin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Users().Create(ctx, &user); err != nil {
			return err
		}

		out.Tenant = tenant
		out.User = user
		return nil
	})
	if err != nil {
		return RegisterUserOutput{}, err
	}

	out.User.PasswordHash = ""
	return out, nil
}
