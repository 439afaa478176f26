package repository

import (
	"context"
	"errors"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// MutateFunc edits a user in place inside UserRepository.Mutate.
// Returning an error aborts the write.
type MutateFunc func(u *entity.User) error

// UserRepository defines the interface for user-related storage operations.
// Emails are stored lower-cased and are unique across all users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Mutate loads the user, applies fn and persists the result as one atomic
	// step with respect to other Mutate calls for the same id.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*entity.User, error)
	// ListPublic returns every user ordered by completed level count desc,
	// then newest first.
	ListPublic(ctx context.Context) ([]*entity.User, error)
}
