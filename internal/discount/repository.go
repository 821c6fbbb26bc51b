package discount

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrDiscountNotFound = errors.New("discount not found")

type Repository interface {
	Create(ctx context.Context, d *Discount) error
	Update(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	List(ctx context.Context) ([]Discount, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Discount, error)
	AssignProducts(ctx context.Context, discountID uuid.UUID, productIDs []uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Discount) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discounts (id, name, percentage, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.Name, d.Percentage, d.StartDate, d.EndDate, d.Active)
	return err
}

func (r *repository) Update(ctx context.Context, d *Discount) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE discounts
		SET name = $2, percentage = $3, start_date = $4, end_date = $5, active = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, d.ID, d.Name, d.Percentage, d.StartDate, d.EndDate, d.Active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Discount, error) {
	var d Discount
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, percentage, start_date, end_date, active, created_at, updated_at
		FROM discounts
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Percentage, &d.StartDate, &d.EndDate, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context) ([]Discount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, percentage, start_date, end_date, active, created_at, updated_at
		FROM discounts
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDiscounts(rows)
}

// ListByProduct returns the product's discounts ordered by id so that
// first-match pricing is deterministic.
func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Discount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.percentage, d.start_date, d.end_date, d.active, d.created_at, d.updated_at
		FROM discounts d
		JOIN product_discounts pd ON pd.discount_id = d.id
		WHERE pd.product_id = $1
		ORDER BY d.id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDiscounts(rows)
}

func (r *repository) AssignProducts(ctx context.Context, discountID uuid.UUID, productIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_discounts WHERE discount_id = $1`, discountID); err != nil {
		return err
	}

	for _, pid := range productIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_discounts (discount_id, product_id) VALUES ($1, $2)
		`, discountID, pid); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanDiscounts(rows *sql.Rows) ([]Discount, error) {
	var out []Discount
	for rows.Next() {
		var d Discount
		if err := rows.Scan(&d.ID, &d.Name, &d.Percentage, &d.StartDate, &d.EndDate,
			&d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
