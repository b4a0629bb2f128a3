package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product's entry within a cart. Price is captured when the
// line is created and is not re-derived from the product on later reads.
// Product carries the resolved product record on responses only; the
// repository persists the line without it.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Product   *Product  `json:"product,omitempty"`
}

// Cart holds one user's line items in insertion order plus derived totals.
// Invariants: at most one line per product id, TotalItems and TotalAmount
// always match the current line slice.
type Cart struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
	TotalItems  int        `json:"total_items"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RecomputeTotals rebuilds the derived totals from the line slice. Every
// mutation must call this before the cart is persisted.
func (c *Cart) RecomputeTotals() {
	var amount float64

	var count int

	for _, item := range c.Items {
		amount += item.Price * float64(item.Quantity)
		count += item.Quantity
	}

	c.TotalAmount = amount
	c.TotalItems = count
}

// FindItem returns the index of the line holding productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

// RemoveItem filters out the line holding productID. Removing a product that
// is not in the cart is a no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	kept := c.Items[:0]

	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	c.Items = kept
}

type AddItemRequest struct {
	UserID    string    `json:"user_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	UserID    string    `json:"user_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0"`
}

type RemoveItemRequest struct {
	UserID    string    `json:"user_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// ClearCartResponse mirrors the clear endpoint's body: a human-readable
// confirmation plus the emptied cart.
type ClearCartResponse struct {
	Message string `json:"message"`
	Cart    *Cart  `json:"cart"`
}
