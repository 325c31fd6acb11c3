package user

import (
	"context"

	"honeyshop/pkg/domainerrors"
)

// ErrNotFound keeps storage-specific 404s consistent across
// implementations.
var ErrNotFound = domainerrors.New(domainerrors.CodeNotFound, "User not found")

// Store abstracts account persistence.
type Store interface {
	// Create persists a new user and assigns its ID.
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
}
