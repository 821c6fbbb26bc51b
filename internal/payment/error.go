package payment

import "errors"

var (
	// ErrNotCapturable: capture requested before the buyer authorized the
	// payment with the provider. A client-side race, not a system bug.
	ErrNotCapturable = errors.New("payment not capturable")

	// ErrCaptureFailed: the provider rejected the capture call.
	ErrCaptureFailed = errors.New("payment capture failed")

	// ErrGatewayUnavailable: network failure or timeout reaching the
	// provider. Transient, safe to retry with backoff.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrRemoteOrderNotFound: the provider has no order under the given
	// external id.
	ErrRemoteOrderNotFound = errors.New("remote order not found")

	ErrPaymentNotFound = errors.New("payment not found")
)
