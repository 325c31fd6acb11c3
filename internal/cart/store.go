package cart

import (
	"context"

	"honeyshop/pkg/domainerrors"
)

var ErrNotFound = domainerrors.New(domainerrors.CodeNotFound, "Cart not found")

// Store abstracts cart persistence. A cart is keyed by user ID or guest
// session ID depending on which field is set.
type Store interface {
	FindByUser(ctx context.Context, userID int64) (*Cart, error)
	FindBySession(ctx context.Context, sessionID string) (*Cart, error)
	// Save upserts the cart under its owner key.
	Save(ctx context.Context, c *Cart) error
	// DeleteByUser removes a user's cart, typically after checkout.
	DeleteByUser(ctx context.Context, userID int64) error
}
