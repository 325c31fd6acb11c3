// Package cart implements shopping carts for both authenticated users and
// anonymous guests. Guest carts are keyed by a generated session ID the
// client echoes back in the X-Session-Id header.
package cart

import "time"

// Cart belongs to either a user (UserID set) or a guest session
// (SessionID set), never both.
type Cart struct {
	UserID    int64
	SessionID string
	Items     []Item
	UpdatedAt time.Time
}

// Item is a denormalized cart line; name, image and price are copied from
// the product at add time.
type Item struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Owner identifies whose cart an operation targets. Anonymous requests
// carry only a session ID, which may still be empty before the first add.
type Owner struct {
	UserID    int64
	SessionID string
}

// Anonymous reports whether the owner is an unauthenticated guest.
func (o Owner) Anonymous() bool { return o.UserID == 0 }
