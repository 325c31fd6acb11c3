package order

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"honeyshop/pkg/domainerrors"
)

// Sentinels the transport layer maps to distinct suspicious-activity
// sub-tags.
var (
	ErrEmptyOrder    = domainerrors.New(domainerrors.CodeInvalidInput, "No order items")
	ErrNotAuthorized = domainerrors.New(domainerrors.CodeUnauthorized, "Not authorized")
)

// Stock is the slice of the catalog checkout needs.
type Stock interface {
	DecrementStock(ctx context.Context, id int64, quantity int) error
}

// Carts lets checkout clear the buyer's cart.
type Carts interface {
	ClearUser(ctx context.Context, userID int64) error
}

// Service implements checkout business logic.
type Service struct {
	store  Store
	stock  Stock
	carts  Carts
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, stock Stock, carts Carts, logger *slog.Logger) *Service {
	return &Service{store: store, stock: stock, carts: carts, logger: logger, now: time.Now}
}

// CreateInput is a checkout request.
type CreateInput struct {
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}

// Create places an order for the user, decrements catalog stock and clears
// the user's cart. Stock and cart failures after the order is persisted are
// logged but do not fail the checkout.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	o := &Order{
		UserID:          userID,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	for _, item := range o.Items {
		if err := s.stock.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.WarnContext(ctx, "stock decrement failed",
				"order_id", o.ID, "product_id", item.ProductID, "error", err)
		}
	}
	if err := s.carts.ClearUser(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "cart clear failed", "order_id", o.ID, "user_id", userID, "error", err)
	}

	s.logger.InfoContext(ctx, "order created", "order_id", o.ID, "user_id", userID, "total", o.TotalPrice)
	return o, nil
}

// Get returns an order. Non-admin users can only read their own orders.
func (s *Service) Get(ctx context.Context, id, userID int64, admin bool) (*Order, error) {
	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	if !admin && o.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return o, nil
}

// Pay marks an order as paid with the provider's confirmation fields.
func (s *Service) Pay(ctx context.Context, id, userID int64, admin bool, result PaymentResult) (*Order, error) {
	o, err := s.Get(ctx, id, userID, admin)
	if err != nil {
		return nil, err
	}

	paidAt := s.now()
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = result

	if err := s.store.Update(ctx, o); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return o, nil
}

// Deliver marks an order as delivered (admin operation).
func (s *Service) Deliver(ctx context.Context, id int64) (*Order, error) {
	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	deliveredAt := s.now()
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt

	if err := s.store.Update(ctx, o); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return o, nil
}

// ListByUser returns the user's own orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// ListAll returns every order (admin listing).
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}
