package product

import (
	"context"
	"errors"
	"log/slog"

	"honeyshop/pkg/domainerrors"
)

// DefaultPageSize matches the reference listing behavior.
const DefaultPageSize = 10

// Service implements catalog business logic.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns one page of the catalog, optionally filtered by a keyword
// against the product name.
func (s *Service) List(ctx context.Context, keyword string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	products, total, err := s.store.List(ctx, ListFilter{
		Keyword:  keyword,
		Page:     page,
		PageSize: DefaultPageSize,
	})
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	pages := (total + DefaultPageSize - 1) / DefaultPageSize
	return &Page{Products: products, Page: page, Pages: pages, Total: total}, nil
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return p, nil
}

// Create adds a catalog entry (admin operation). Empty fields receive the
// reference sample defaults.
func (s *Service) Create(ctx context.Context, p *Product) (*Product, error) {
	if p == nil {
		p = &Product{}
	}
	if p.Name == "" {
		p.Name = "Sample Name"
	}
	if p.Description == "" {
		p.Description = "Sample Description"
	}
	if p.Brand == "" {
		p.Brand = "Sample Brand"
	}
	if p.Category == "" {
		p.Category = "Sample Category"
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	s.logger.InfoContext(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateInput carries optional product updates; zero fields keep their
// current values.
type UpdateInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Brand       string
	Stock       *int
	Images      []string
}

// Update applies non-zero fields to an existing product.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price != 0 {
		p.Price = in.Price
	}
	if in.Category != "" {
		p.Category = in.Category
	}
	if in.Brand != "" {
		p.Brand = in.Brand
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if len(in.Images) > 0 {
		p.Images = in.Images
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return nil
}

// DecrementStock reduces stock after an order; stock never goes negative.
func (s *Service) DecrementStock(ctx context.Context, id int64, quantity int) error {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.Stock -= quantity
	if p.Stock < 0 {
		p.Stock = 0
	}
	return s.store.Update(ctx, p)
}
