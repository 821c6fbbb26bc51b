package order

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *Order) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)

	// GetForUpdateTx loads the order with its items under a row lock so
	// concurrent transitions on the same order serialize.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Order, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status OrderStatus) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sql.Tx, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateTx"),
		zap.String("order_id", o.ID.String()),
	)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, buyer_id, order_date, total_amount, discount,
			delivery_method, payment_method, status, receipt_type,
			doc_type, doc_number, tax_id, business_name, expected_delivery_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		o.ID, o.BuyerID, o.OrderDate, o.TotalAmount, o.Discount,
		o.DeliveryMethod, o.PaymentMethod, o.Status, o.ReceiptType,
		o.DocType, o.DocNumber, o.TaxID, o.BusinessName, o.ExpectedDeliveryDate,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5)
		`, item.ID, o.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			return err
		}
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, buyer_id, order_date, total_amount, discount,
		       delivery_method, payment_method, status, receipt_type,
		       doc_type, doc_number, tax_id, business_name,
		       expected_delivery_date, shipment_tracking_number,
		       created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&o.ID, &o.BuyerID, &o.OrderDate, &o.TotalAmount, &o.Discount,
		&o.DeliveryMethod, &o.PaymentMethod, &o.Status, &o.ReceiptType,
		&o.DocType, &o.DocNumber, &o.TaxID, &o.BusinessName,
		&o.ExpectedDeliveryDate, &o.ShipmentTrackingNumber,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	// The payment is owned 1:1 by the order; load it alongside.
	var p payment.Payment
	err = r.db.QueryRowContext(ctx, `
		SELECT id, order_id, amount, method, status, transaction_id, payment_date, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`, o.ID).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status,
		&p.TransactionID, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		o.Payment = &p
	}

	return &o, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `
		SELECT id, buyer_id, order_date, total_amount, discount,
		       delivery_method, payment_method, status, receipt_type,
		       doc_type, doc_number, tax_id, business_name,
		       expected_delivery_date, shipment_tracking_number,
		       created_at, updated_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY order_date DESC
	`, buyerID)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `
		SELECT id, buyer_id, order_date, total_amount, discount,
		       delivery_method, payment_method, status, receipt_type,
		       doc_type, doc_number, tax_id, business_name,
		       expected_delivery_date, shipment_tracking_number,
		       created_at, updated_at
		FROM orders
		ORDER BY order_date DESC
	`)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.BuyerID, &o.OrderDate, &o.TotalAmount, &o.Discount,
			&o.DeliveryMethod, &o.PaymentMethod, &o.Status, &o.ReceiptType,
			&o.DocType, &o.DocNumber, &o.TaxID, &o.BusinessName,
			&o.ExpectedDeliveryDate, &o.ShipmentTrackingNumber,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		items, err := r.loadItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}

	return orders, nil
}

func (r *repository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Order, error) {
	var o Order
	err := tx.QueryRowContext(ctx, `
		SELECT id, buyer_id, order_date, total_amount, discount,
		       delivery_method, payment_method, status, receipt_type,
		       doc_type, doc_number, tax_id, business_name, expected_delivery_date
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&o.ID, &o.BuyerID, &o.OrderDate, &o.TotalAmount, &o.Discount,
		&o.DeliveryMethod, &o.PaymentMethod, &o.Status, &o.ReceiptType,
		&o.DocType, &o.DocNumber, &o.TaxID, &o.BusinessName, &o.ExpectedDeliveryDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItemsTx(ctx, tx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status OrderStatus) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const itemQuery = `
	SELECT id, order_id, product_id, quantity, unit_price
	FROM order_items
	WHERE order_id = $1
	ORDER BY id
`

func (r *repository) loadItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, itemQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *repository) loadItemsTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := tx.QueryContext(ctx, itemQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]OrderItem, error) {
	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
