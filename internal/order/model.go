package order

import (
	"time"

	"storefront-be/internal/payment"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusPaid       OrderStatus = "PAID"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusFailed     OrderStatus = "FAILED"
)

// allowedTransitions is the explicit allow-list: anything not named here is
// denied. CANCELLED is reachable only from PENDING or PAID; FAILED from any
// non-terminal state; the forward chain follows fulfilment order.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusCancelled, StatusFailed},
	StatusPaid:       {StatusInProgress, StatusCancelled, StatusFailed},
	StatusInProgress: {StatusShipped, StatusFailed},
	StatusShipped:    {StatusDelivered, StatusFailed},
}

// CanTransition reports whether from -> to is permitted.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave this status.
func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "HOME_DELIVERY"
	DeliveryPickup DeliveryMethod = "STORE_PICKUP"
)

type PaymentMethod string

const (
	PaymentPayPal PaymentMethod = "PAYPAL"
	PaymentCard   PaymentMethod = "CARD"
	PaymentCash   PaymentMethod = "CASH_ON_DELIVERY"
)

// ReceiptType selects the document kind dispatched after a PAID transition.
type ReceiptType string

const (
	ReceiptPlain    ReceiptType = "RECEIPT"
	ReceiptInvoiced ReceiptType = "INVOICE"
)

type Order struct {
	ID                     uuid.UUID        `json:"id"`
	BuyerID                uuid.UUID        `json:"buyer_id"`
	OrderDate              time.Time        `json:"order_date"`
	TotalAmount            float64          `json:"total_amount"`
	Discount               float64          `json:"discount"`
	DeliveryMethod         DeliveryMethod   `json:"delivery_method"`
	PaymentMethod          PaymentMethod    `json:"payment_method"`
	Status                 OrderStatus      `json:"status"`
	ReceiptType            ReceiptType      `json:"receipt_type"`
	DocType                string           `json:"doc_type"`
	DocNumber              string           `json:"doc_number"`
	TaxID                  *string          `json:"tax_id,omitempty"`
	BusinessName           *string          `json:"business_name,omitempty"`
	ExpectedDeliveryDate   *time.Time       `json:"expected_delivery_date,omitempty"`
	ShipmentTrackingNumber *string          `json:"shipment_tracking_number,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
	Items                  []OrderItem      `json:"items"`
	Payment                *payment.Payment `json:"payment,omitempty"`
}

// OrderItem references its product by id and snapshots the unit price at
// order-creation time, so later catalog changes never alter a placed order.
// Items are immutable once the order leaves PENDING.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}
