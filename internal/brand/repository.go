package brand

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrBrandNotFound = errors.New("brand not found")

type Repository interface {
	Create(ctx context.Context, b *Brand) error
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	List(ctx context.Context) ([]Brand, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Brand) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, description, image_url)
		VALUES ($1, $2, $3, $4)
	`, b.ID, b.Name, b.Description, b.ImageURL)
	return err
}

func (r *repository) Update(ctx context.Context, b *Brand) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE brands
		SET name = $2, description = $3, image_url = $4, updated_at = NOW()
		WHERE id = $1
	`, b.ID, b.Name, b.Description, b.ImageURL)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Brand, error) {
	var b Brand
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM brands
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Description, &b.ImageURL, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) List(ctx context.Context) ([]Brand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM brands
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.ImageURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
