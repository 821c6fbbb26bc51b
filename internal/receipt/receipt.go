package receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"go.uber.org/zap"
)

// Document is the rendered post-payment artifact for an order.
type Document struct {
	Number    string
	Kind      order.ReceiptType
	OrderID   string
	IssuedAt  time.Time
	Body      string
	Recipient string
}

// Notifier delivers a rendered document to the buyer. Implementations may
// email, enqueue, or merely log.
type Notifier interface {
	Send(ctx context.Context, doc *Document) error
}

// Dispatcher renders the document matching the order's receipt type and hands
// it to the notifier. It implements order.ReceiptDispatcher.
type Dispatcher struct {
	notifier Notifier
	now      func() time.Time
}

func NewDispatcher(notifier Notifier) *Dispatcher {
	return &Dispatcher{notifier: notifier, now: time.Now}
}

func (d *Dispatcher) Dispatch(ctx context.Context, o *order.Order) error {
	doc, err := d.render(o)
	if err != nil {
		return err
	}
	if err := d.notifier.Send(ctx, doc); err != nil {
		return fmt.Errorf("failed to send %s %s: %w", strings.ToLower(string(doc.Kind)), doc.Number, err)
	}
	return nil
}

func (d *Dispatcher) render(o *order.Order) (*Document, error) {
	issued := d.now()

	switch o.ReceiptType {
	case order.ReceiptInvoiced:
		// A tax invoice needs the buyer's fiscal identity.
		if o.TaxID == nil || o.BusinessName == nil {
			return nil, fmt.Errorf("order %s requests an invoice but has no tax identity", o.ID)
		}
		doc := &Document{
			Number:   GenerateNumber("INV"),
			Kind:     order.ReceiptInvoiced,
			OrderID:  o.ID.String(),
			IssuedAt: issued,
		}
		doc.Body = renderBody(o, doc, []string{
			fmt.Sprintf("Business: %s", *o.BusinessName),
			fmt.Sprintf("Tax ID:   %s", *o.TaxID),
		})
		return doc, nil

	case order.ReceiptPlain, "":
		doc := &Document{
			Number:   GenerateNumber("RCP"),
			Kind:     order.ReceiptPlain,
			OrderID:  o.ID.String(),
			IssuedAt: issued,
		}
		doc.Body = renderBody(o, doc, nil)
		return doc, nil

	default:
		return nil, fmt.Errorf("unknown receipt type %q for order %s", o.ReceiptType, o.ID)
	}
}

func renderBody(o *order.Order, doc *Document, extra []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", doc.Kind, doc.Number)
	fmt.Fprintf(&b, "Order:    %s\n", o.ID)
	fmt.Fprintf(&b, "Issued:   %s\n", doc.IssuedAt.UTC().Format(time.RFC3339))
	for _, line := range extra {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	for _, item := range o.Items {
		fmt.Fprintf(&b, "%3d x %-36s %10.2f\n", item.Quantity, item.ProductID, float64(item.Quantity)*item.UnitPrice)
	}
	if o.Discount > 0 {
		fmt.Fprintf(&b, "%44s %10.2f\n", "discount", -o.Discount)
	}
	fmt.Fprintf(&b, "%44s %10.2f\n", "total", o.TotalAmount)

	return b.String()
}

// LogNotifier records the dispatched document instead of delivering it.
// Used until an outbound channel (email, queue) is wired in.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, doc *Document) error {
	logger.FromCtx(ctx).Info("receipt dispatched",
		zap.String("number", doc.Number),
		zap.String("kind", string(doc.Kind)),
		zap.String("order_id", doc.OrderID),
	)
	return nil
}
