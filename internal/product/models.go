// Package product implements the catalog: listing with keyword search and
// paging, detail views, and admin CRUD.
package product

import "time"

// Product is a catalog entry.
type Product struct {
	ID             int64
	Name           string
	Description    string
	Price          float64
	Category       string
	Brand          string
	Stock          int
	Images         []string
	Specifications map[string]string
	RatingAverage  float64
	RatingCount    int
	IsFeatured     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Page is one page of catalog results.
type Page struct {
	Products []Product
	Page     int
	Pages    int
	Total    int
}
