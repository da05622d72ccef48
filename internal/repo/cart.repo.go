package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lojinha/internal/domain"
)

type CartRepo interface {
	// GetOrCreate returns the customer's cart, lazily creating an empty one.
	// Creation races on the customer_id uniqueness constraint and re-reads.
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error)
	// UpsertItem atomically adds quantity to an existing line (clamped at the
	// cap) or inserts a new line. Two concurrent adds for the same product
	// must both be reflected.
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, tx *sql.Tx, cartID uuid.UUID) error
}

type cartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepo {
	return &cartRepo{db: db}
}

func (r *cartRepo) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	cart, err := r.find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO carts (id, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (customer_id) DO NOTHING`,
		uuid.New(), customerID, now,
	)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, customerID)
}

func (r *cartRepo) find(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, created_at, updated_at FROM carts WHERE customer_id = $1`,
		customerID,
	).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	// Lines carry the product's current name and price; the cart is a live
	// working set, never a snapshot.
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.product_id, p.name, p.price, ci.quantity, ci.added_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.AddedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, 999)`,
		cartID, productID, quantity, time.Now(),
	)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	return err
}

func (r *cartRepo) Clear(ctx context.Context, tx *sql.Tx, cartID uuid.UUID) error {
	var exec execer = r.db
	if tx != nil {
		exec = tx
	}
	_, err := exec.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
