package receipt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront-be/internal/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	doc *Document
	err error
}

func (n *captureNotifier) Send(_ context.Context, doc *Document) error {
	n.doc = doc
	return n.err
}

func paidOrder(rt order.ReceiptType) *order.Order {
	return &order.Order{
		ID:          uuid.New(),
		Status:      order.StatusPaid,
		ReceiptType: rt,
		TotalAmount: 90,
		Discount:    10,
		Items: []order.OrderItem{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: 50},
		},
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("plain receipt", func(t *testing.T) {
		n := &captureNotifier{}
		d := NewDispatcher(n)

		o := paidOrder(order.ReceiptPlain)
		require.NoError(t, d.Dispatch(ctx, o))

		require.NotNil(t, n.doc)
		assert.Equal(t, order.ReceiptPlain, n.doc.Kind)
		assert.True(t, strings.HasPrefix(n.doc.Number, "RCP-"))
		assert.Contains(t, n.doc.Body, o.ID.String())
		assert.Contains(t, n.doc.Body, "discount")
	})

	t.Run("invoice carries tax identity", func(t *testing.T) {
		n := &captureNotifier{}
		d := NewDispatcher(n)

		taxID := "B-12345678"
		business := "ACME S.L."
		o := paidOrder(order.ReceiptInvoiced)
		o.TaxID = &taxID
		o.BusinessName = &business

		require.NoError(t, d.Dispatch(ctx, o))
		assert.True(t, strings.HasPrefix(n.doc.Number, "INV-"))
		assert.Contains(t, n.doc.Body, taxID)
		assert.Contains(t, n.doc.Body, business)
	})

	t.Run("invoice without tax identity fails", func(t *testing.T) {
		n := &captureNotifier{}
		d := NewDispatcher(n)

		err := d.Dispatch(ctx, paidOrder(order.ReceiptInvoiced))
		assert.Error(t, err)
		assert.Nil(t, n.doc)
	})

	t.Run("empty receipt type defaults to plain", func(t *testing.T) {
		n := &captureNotifier{}
		d := NewDispatcher(n)

		require.NoError(t, d.Dispatch(ctx, paidOrder("")))
		assert.Equal(t, order.ReceiptPlain, n.doc.Kind)
	})

	t.Run("notifier failure is wrapped", func(t *testing.T) {
		n := &captureNotifier{err: errors.New("smtp down")}
		d := NewDispatcher(n)

		err := d.Dispatch(ctx, paidOrder(order.ReceiptPlain))
		assert.ErrorContains(t, err, "smtp down")
	})
}

func TestGenerateNumber(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		num := GenerateNumber("RCP")
		assert.True(t, strings.HasPrefix(num, "RCP-"))

		parts := strings.Split(num, "-")
		if assert.Len(t, parts, 5) {
			assert.Len(t, parts[1], 8, "date part YYYYMMDD")
			assert.Len(t, parts[2], 6, "time part HHMMSS")
			assert.Len(t, parts[3], 3, "milliseconds part")
			assert.Len(t, parts[4], 4, "random part")
		}
	})

	t.Run("Uniqueness", func(t *testing.T) {
		assert.NotEqual(t, GenerateNumber("INV"), GenerateNumber("INV"))
	})
}
