package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"honeyshop/internal/product"
	"honeyshop/pkg/domainerrors"
)

// Sentinels the transport layer maps to distinct suspicious-activity
// sub-tags.
var (
	ErrProductNotFound   = product.ErrNotFound
	ErrInsufficientStock = domainerrors.New(domainerrors.CodeInvalidInput, "Not enough stock available")
	ErrInvalidQuantity   = domainerrors.New(domainerrors.CodeInvalidInput, "Quantity must be greater than 0")
	ErrItemNotFound      = domainerrors.New(domainerrors.CodeNotFound, "Item not found in cart")
)

// Catalog is the slice of the product store the cart needs.
type Catalog interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
}

// Service implements cart business logic. User carts and guest carts can
// live in different stores (guests go to redis when configured).
type Service struct {
	users   Store
	guests  Store
	catalog Catalog
	logger  *slog.Logger
}

func NewService(users, guests Store, catalog Catalog, logger *slog.Logger) *Service {
	return &Service{users: users, guests: guests, catalog: catalog, logger: logger}
}

// View returns the owner's cart; an absent cart is an empty cart, as in
// the reference behavior.
func (s *Service) View(ctx context.Context, owner Owner) (*Cart, error) {
	c, err := s.find(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Cart{UserID: owner.UserID, SessionID: owner.SessionID}, nil
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return c, nil
}

// Add validates the product and stock, then adds or tops up the item.
// For anonymous owners with no session yet, a session ID is generated and
// returned on the cart for the transport layer to echo back.
func (s *Service) Add(ctx context.Context, owner Owner, productID int64, quantity int) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	p, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	if p.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	if owner.Anonymous() && owner.SessionID == "" {
		owner.SessionID = uuid.NewString()
	}

	c, err := s.find(ctx, owner)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
		}
		c = &Cart{UserID: owner.UserID, SessionID: owner.SessionID}
	}

	if item := findItem(c, productID); item != nil {
		item.Quantity += quantity
	} else {
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		c.Items = append(c.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     image,
			Price:     p.Price,
			Quantity:  quantity,
		})
	}

	if err := s.save(ctx, c); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return c, nil
}

// Remove deletes an item from the owner's cart.
func (s *Service) Remove(ctx context.Context, owner Owner, productID int64) (*Cart, error) {
	c, err := s.find(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept

	if err := s.save(ctx, c); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return c, nil
}

// UpdateQuantity sets an item's quantity after revalidating the product
// and its stock.
func (s *Service) UpdateQuantity(ctx context.Context, owner Owner, productID int64, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.find(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	p, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	if p.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	item := findItem(c, productID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	item.Quantity = quantity

	if err := s.save(ctx, c); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return c, nil
}

// ClearUser empties a user's cart after checkout.
func (s *Service) ClearUser(ctx context.Context, userID int64) error {
	return s.users.DeleteByUser(ctx, userID)
}

func (s *Service) find(ctx context.Context, owner Owner) (*Cart, error) {
	if !owner.Anonymous() {
		return s.users.FindByUser(ctx, owner.UserID)
	}
	if owner.SessionID == "" {
		return nil, ErrNotFound
	}
	return s.guests.FindBySession(ctx, owner.SessionID)
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	if c.UserID != 0 {
		return s.users.Save(ctx, c)
	}
	return s.guests.Save(ctx, c)
}

func findItem(c *Cart, productID int64) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
