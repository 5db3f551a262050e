package user

import (
	"context"

	domain "user-crud-console/internal/domain/user"
)

// Usecase is what the reference API's HTTP layer needs from the user service.
type Usecase interface {
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, u domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, query string) ([]domain.User, error)
}

// Repository defines the data access operations for users.
// Implementations return an apperrors.NotFoundError for unknown ids.
type Repository interface {
	// Create inserts u and returns the stored row with its new id.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Update replaces every field of the user with u.ID.
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	// List returns users in id order whose name or email contains query.
	List(ctx context.Context, query string) ([]domain.User, error)
}
