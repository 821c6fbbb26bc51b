package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status is derived from the owning order's status by the order engine;
// it is never set independently.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Payment is owned 1:1 by its order: created with it, mutated only inside
// the order engine's unit of work, destroyed only with the order.
type Payment struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       uuid.UUID  `json:"order_id"`
	Amount        float64    `json:"amount"`
	Method        string     `json:"method"`
	Status        Status     `json:"status"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
