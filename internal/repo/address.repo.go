package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"lojinha/internal/domain"
)

type AddressRepo interface {
	FindById(ctx context.Context, id uuid.UUID) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Address, error)
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
}

type addressRepo struct {
	db *sql.DB
}

func NewAddressRepo(db *sql.DB) AddressRepo {
	return &addressRepo{db: db}
}

func (r *addressRepo) FindById(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	var a domain.Address
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, street, city, state, zip, created_at, updated_at
		FROM addresses WHERE id = $1`, id,
	).Scan(&a.ID, &a.CustomerID, &a.Street, &a.City, &a.State, &a.Zip, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, street, city, state, zip, created_at, updated_at
		FROM addresses WHERE customer_id = $1 ORDER BY created_at`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Street, &a.City, &a.State, &a.Zip, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *addressRepo) Create(ctx context.Context, address *domain.Address) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (id, customer_id, street, city, state, zip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		address.ID, address.CustomerID, address.Street, address.City, address.State,
		address.Zip, address.CreatedAt, address.UpdatedAt,
	)
	return err
}

func (r *addressRepo) Update(ctx context.Context, address *domain.Address) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE addresses SET street = $1, city = $2, state = $3, zip = $4, updated_at = $5
		WHERE id = $6`,
		address.Street, address.City, address.State, address.Zip, address.UpdatedAt, address.ID,
	)
	return err
}
