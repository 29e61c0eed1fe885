package repository

import (
	"context"

	"farm/internal/domain/model"
)

type TenantRepository interface {
	Create(ctx context.Context, t model.Tenant) (model.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (model.Tenant, error)
}
