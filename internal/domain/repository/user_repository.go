package repository

import (
	"context"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByBadge(ctx context.Context, badge string) (*entity.User, error)
	ListOfficers(ctx context.Context) ([]entity.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChangePassword bool) error
}
