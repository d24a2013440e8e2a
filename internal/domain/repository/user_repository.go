package repository

import (
	"context"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

// UserRepository defines the storage operations for users.
// Implementations report missing rows as apperror.ErrNotFound and unique
// violations as apperror.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context, offset, limit int) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) (*entity.User, error)
	Filter(ctx context.Context, f entity.UserFilter) ([]entity.User, error)
}

// Transactor runs fn inside one unit of work. The repository handed to fn is
// bound to that unit; it commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo UserRepository) error) error
}
