package order

import (
	"context"

	"honeyshop/pkg/domainerrors"
)

var ErrNotFound = domainerrors.New(domainerrors.CodeNotFound, "Order not found")

// Store abstracts order persistence.
type Store interface {
	// Create persists a new order and assigns its ID.
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// ListAll returns every order, newest first (admin listing).
	ListAll(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o *Order) error
}
