package receipt

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateNumber produces a document number like RCP-20260901-103000-123-4567.
// prefix distinguishes plain receipts from tax invoices.
func GenerateNumber(prefix string) string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf(
		"%s-%s-%03d-%04d",
		prefix,
		datePart,
		millis,
		n.Int64(),
	)
}
