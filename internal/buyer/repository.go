package buyer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrBuyerNotFound = errors.New("buyer not found")
	ErrEmailTaken    = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, b *Buyer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Buyer, error)
	GetByEmail(ctx context.Context, email string) (*Buyer, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Buyer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO buyers (id, email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.Email, b.PasswordHash, b.FullName, b.Role)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrEmailTaken
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Buyer, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Buyer, error) {
	return r.get(ctx, "email = $1", email)
}

func (r *repository) get(ctx context.Context, where string, arg any) (*Buyer, error) {
	var b Buyer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, role, created_at, updated_at
		FROM buyers
		WHERE `+where, arg,
	).Scan(&b.ID, &b.Email, &b.PasswordHash, &b.FullName, &b.Role, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBuyerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
