// Package order implements checkout: creating orders from cart items,
// payment and delivery transitions, and order listings.
package order

import "time"

// Order is a placed order. Items are denormalized at creation time so the
// order survives later catalog edits.
type Order struct {
	ID              int64
	UserID          int64
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentResult   PaymentResult
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

// Item is one order line.
type Item struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ShippingAddress is the destination captured at checkout.
type ShippingAddress struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// PaymentResult records the payment provider's confirmation fields.
type PaymentResult struct {
	ID         string
	Status     string
	UpdateTime string
}
