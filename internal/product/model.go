package product

import (
	"time"

	"storefront-be/internal/discount"

	"github.com/google/uuid"
)

// Product carries the inventory-relevant slice (stock, active) alongside the
// catalog fields. Stock never goes negative; a product whose stock reaches
// zero is marked inactive by the order engine.
type Product struct {
	ID          uuid.UUID           `json:"id"`
	Slug        string              `json:"slug"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	Price       float64             `json:"price"`
	Stock       int                 `json:"stock"`
	Active      bool                `json:"active"`
	NewArrival  bool                `json:"new_arrival"`
	BrandID     *uuid.UUID          `json:"brand_id,omitempty"`
	Discounts   []discount.Discount `json:"discounts,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// View is the catalog projection: list price plus the price a buyer pays
// right now, resolved through the pricing package at read time.
type View struct {
	Product
	DiscountedPrice    float64 `json:"discounted_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

type ListOptions struct {
	OnlyActive bool
	Search     string
	BrandID    *uuid.UUID
}
