package main

import (
	"time"

	"farm/internal/config"
	"farm/internal/domain/model"
	"farm/internal/handler"
	"farm/internal/infra/db"
	infraRepo "farm/internal/infra/repository"
	"farm/internal/server"
	"farm/internal/usecase"
	auth "farm/internal/usecase/auth_usecase"
	"farm/internal/validator"
	"farm/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 7 * 24 * time.Hour,
	}
}

func (i *jwtIssuer) Issue(userID string, tenantID string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"tid":  tenantID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.GoEnv == "dev"))
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Pen{},
		&model.Animal{},
		&model.FeedType{},
		&model.FeedInventory{},
		&model.FeedMovement{},
		&model.FeedConsumption{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	typeRepo := infraRepo.NewFeedTypeGormRepository(gormDB)
	movementRepo := infraRepo.NewFeedMovementGormRepository(gormDB)
	consumptionRepo := infraRepo.NewFeedConsumptionGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	authValidator := validator.NewAuthValidator()

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, txManager, authValidator, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, authValidator, verifier, issuer, clock)
	feedingUC := usecase.NewFeedingUsecase(typeRepo, consumptionRepo, movementRepo, txManager, idGen, clock)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC)
	feedingH := handler.NewFeedingHandler(feedingUC)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	log.Info("starting api server", zap.String("addr", addr), zap.String("env", cfg.GoEnv))
	if err := server.Start(addr, cfg, authH, feedingH); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
