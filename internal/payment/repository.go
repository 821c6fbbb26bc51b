package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists payment rows. Writes happen only inside the order
// engine's transaction, hence the Tx-scoped mutators.
type Repository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *Payment) error
	UpdateForOrderTx(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, status Status, transactionID *string, paidAt *time.Time) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sql.Tx, p *Payment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, amount, method, status, transaction_id, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.OrderID, p.Amount, p.Method, p.Status, p.TransactionID, p.PaymentDate)
	return err
}

func (r *repository) UpdateForOrderTx(
	ctx context.Context,
	tx *sql.Tx,
	orderID uuid.UUID,
	status Status,
	transactionID *string,
	paidAt *time.Time,
) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $2,
		    transaction_id = COALESCE($3, transaction_id),
		    payment_date = COALESCE($4, payment_date),
		    updated_at = NOW()
		WHERE order_id = $1
	`, orderID, status, transactionID, paidAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, amount, method, status, transaction_id, payment_date, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`, orderID).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Status,
		&p.TransactionID, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
