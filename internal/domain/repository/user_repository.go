package repository

import (
	"context"

	"github.com/spotifood/spotifood-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, skip, limit int) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// Delete removes the user and all of their addresses in one transaction.
	Delete(ctx context.Context, id int64) error
}
