package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition: the requested status change is not in the
	// allow-list. Order and inventory stay untouched.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock: a line item's product cannot cover the ordered
	// quantity. No partial stock mutation is committed; safe to retry after
	// restock.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrEmptyOrder      = errors.New("order has no line items")
	ErrInvalidDiscount = errors.New("discount must be between zero and the item total")
	ErrUnauthorized    = errors.New("unauthorized")
)
