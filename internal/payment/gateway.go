package payment

import "context"

// Remote order statuses used by the provider.
const (
	GatewayStatusCreated   = "CREATED"
	GatewayStatusApproved  = "APPROVED"
	GatewayStatusCompleted = "COMPLETED"
)

// GatewayOrder is the provider-side view of a payment order.
type GatewayOrder struct {
	ID     string
	Status string
}

// Gateway wraps the external payment provider. CaptureOrder is idempotent
// with respect to "already captured": retrying a successful capture returns
// the completed remote state instead of an error.
type Gateway interface {
	GetOrder(ctx context.Context, externalID string) (*GatewayOrder, error)
	CaptureOrder(ctx context.Context, externalID string) (*GatewayOrder, error)
}
