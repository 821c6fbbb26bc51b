package discount

import (
	"time"

	"github.com/google/uuid"
)

// Discount is a percentage reduction applied to its associated products
// while the date window is open. Products link many-to-many.
type Discount struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InEffect reports whether the discount applies at the given instant.
// The window is inclusive on both ends.
func (d Discount) InEffect(now time.Time) bool {
	return d.Active && !d.StartDate.After(now) && !d.EndDate.Before(now)
}
