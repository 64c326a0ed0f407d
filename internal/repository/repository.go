package repository

import (
	"context"

	"user-service/internal/domain/user"

	"github.com/google/uuid"
)

// ListUsersQuery carries the filter, sort and pagination parameters for a
// full-collection listing. Sort columns and filter fields are whitelisted by
// the implementation; unknown parameters are rejected before this is built.
type ListUsersQuery struct {
	Active         *bool
	EmailConfirmed *bool
	AccessLevel    *user.AccessLevel
	Email          *string
	SortBy         string
	SortDesc       bool
	Skip           int
	Limit          int
}

// UserRepository defines user data access operations
type UserRepository interface {
	List(ctx context.Context, query ListUsersQuery) ([]*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*user.User, error)
}
