package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-be/internal/discount"

	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error

	// Tx-scoped accessors used inside the order engine's unit of work.
	// GetForUpdateTx takes a row lock so concurrent stock decrements on the
	// same product serialize.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Product, error)
	UpdateStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, stock int, active bool) error
}

type repository struct {
	db           *sql.DB
	discountRepo discount.Repository
}

func NewRepository(db *sql.DB, discountRepo discount.Repository) Repository {
	return &repository{db: db, discountRepo: discountRepo}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, slug, name, description, price, stock, active, new_arrival, brand_id,
		       created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Active,
		&p.NewArrival, &p.BrandID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	discounts, err := r.discountRepo.ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product discounts: %w", err)
	}
	p.Discounts = discounts

	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	query := `
		SELECT id, slug, name, description, price, stock, active, new_arrival, brand_id,
		       created_at, updated_at
		FROM products
		WHERE 1=1
	`
	args := []any{}
	argIndex := 1

	if opts.OnlyActive {
		query += " AND active = true"
	}
	if opts.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+opts.Search+"%")
		argIndex++
	}
	if opts.BrandID != nil {
		query += fmt.Sprintf(" AND brand_id = $%d", argIndex)
		args = append(args, *opts.BrandID)
		argIndex++
	}

	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.Active, &p.NewArrival, &p.BrandID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		discounts, err := r.discountRepo.ListByProduct(ctx, products[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product discounts: %w", err)
		}
		products[i].Discounts = discounts
	}

	return products, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, slug, name, description, price, stock, active, new_arrival, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Slug, p.Name, p.Description, p.Price, p.Stock, p.Active, p.NewArrival, p.BrandID)
	return err
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET slug = $2, name = $3, description = $4, price = $5, stock = $6,
		    active = $7, new_arrival = $8, brand_id = $9, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Slug, p.Name, p.Description, p.Price, p.Stock, p.Active, p.NewArrival, p.BrandID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Product, error) {
	var p Product
	err := tx.QueryRowContext(ctx, `
		SELECT id, name, price, stock, active
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, stock int, active bool) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = $2, active = $3, updated_at = NOW()
		WHERE id = $1
	`, id, stock, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
