package payment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateForOrderTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("stores transaction id and paid date", func(t *testing.T) {
		txnID := "CAP-1"
		paidAt := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE payments`).
			WithArgs(orderID, StatusCompleted, &txnID, &paidAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		assert.NoError(t, repo.UpdateForOrderTx(ctx, tx, orderID, StatusCompleted, &txnID, &paidAt))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing payment row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE payments`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		assert.ErrorIs(t,
			repo.UpdateForOrderTx(ctx, tx, orderID, StatusRefunded, nil, nil),
			ErrPaymentNotFound)
	})
}

func TestGetByOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		txnID := "CAP-1"
		mock.ExpectQuery(`SELECT .* FROM payments`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_id", "amount", "method", "status",
				"transaction_id", "payment_date", "created_at", "updated_at",
			}).AddRow(uuid.New(), orderID, 99.0, "PAYPAL", "COMPLETED", &txnID, &now, now, now))

		p, err := repo.GetByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, p.Status)
		require.NotNil(t, p.TransactionID)
		assert.Equal(t, "CAP-1", *p.TransactionID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM payments`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByOrder(ctx, orderID)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}
