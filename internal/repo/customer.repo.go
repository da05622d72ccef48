package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lojinha/internal/domain"
)

type CustomerRepo interface {
	FindById(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	// FindOrCreateByEmail is an atomic upsert against the email uniqueness
	// constraint, so two concurrent first-time logins resolve to one row.
	FindOrCreateByEmail(ctx context.Context, email, name string) (*domain.Customer, error)
}

type customerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) CustomerRepo {
	return &customerRepo{db: db}
}

func (r *customerRepo) FindById(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) FindOrCreateByEmail(ctx context.Context, email, name string) (*domain.Customer, error) {
	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (id, email, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, name, created_at`,
		uuid.New(), email, name, time.Now(),
	).Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
