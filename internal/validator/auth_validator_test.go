package validator_test

import (
	"context"
	"testing"

	auth "farm/internal/usecase/auth_usecase"
	"farm/internal/validator"

	"github.com/stretchr/testify/assert"
)

func validRegisterInput() auth.RegisterUserInput {
	return auth.RegisterUserInput{
		Email:           "admin@farm.example.com",
		Password:        "password123",
		TenantName:      "Green Farm",
		TenantSubdomain: "green-farm",
	}
}

func TestValidateRegister(t *testing.T) {
	v := validator.NewAuthValidator()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.ValidateRegister(ctx, validRegisterInput()))
	})

	t.Run("empty email", func(t *testing.T) {
		in := validRegisterInput()
		in.Email = ""
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), auth.ErrInvalidEmailFormat)
	})

	t.Run("bad email format", func(t *testing.T) {
		in := validRegisterInput()
		in.Email = "not-an-email"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), auth.ErrInvalidEmailFormat)
	})

	t.Run("short password", func(t *testing.T) {
		in := validRegisterInput()
		in.Password = "short"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), auth.ErrPasswordTooShort)
	})

	t.Run("missing tenant name", func(t *testing.T) {
		in := validRegisterInput()
		in.TenantName = "  "
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), auth.ErrTenantRequired)
	})

	t.Run("bad subdomain", func(t *testing.T) {
		in := validRegisterInput()
		in.TenantSubdomain = "Green Farm!"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), auth.ErrTenantRequired)
	})

	t.Run("subdomain cannot end with hyphen", func(t *testing.T) {
		in := validRegisterInput()
		in.TenantSubdomain = "green-"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), auth.ErrTenantRequired)
	})
}

func TestValidateLogin(t *testing.T) {
	v := validator.NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "admin@farm.example.com", "password123"))
	assert.ErrorIs(t, v.ValidateLogin(ctx, "", "password123"), auth.ErrInvalidEmailFormat)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "admin@farm.example.com", ""), auth.ErrInvalidEmailFormat)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "bad email@", "password123"), auth.ErrInvalidEmailFormat)
}
