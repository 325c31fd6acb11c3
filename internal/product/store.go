package product

import (
	"context"

	"honeyshop/pkg/domainerrors"
)

var ErrNotFound = domainerrors.New(domainerrors.CodeNotFound, "Product not found")

// ListFilter narrows and pages a catalog listing.
type ListFilter struct {
	Keyword  string
	Page     int
	PageSize int
}

// Store abstracts catalog persistence.
type Store interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
