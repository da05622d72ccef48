package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"lojinha/internal/domain"
)

type OrderRepo interface {
	// Create inserts the order and its item snapshots. ErrDuplicateKey is
	// returned when another request already persisted the same idempotency
	// key; the caller must then fetch the winner's order.
	Create(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	FindById(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)
	// UpdateStatusFrom persists the order's status only if the stored row
	// is still at from, and reports whether it did. A false return means a
	// concurrent writer moved the order first.
	UpdateStatusFrom(ctx context.Context, tx *sql.Tx, order *domain.Order, from domain.OrderStatus) (bool, error)
	FindExpiredBoletoOrders(ctx context.Context, now time.Time) ([]domain.Order, error)
}

// ErrDuplicateKey signals an idempotency-key unique violation on insert.
var ErrDuplicateKey = errors.New("duplicate idempotency key")

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	var key any
	if order.IdempotencyKey != "" {
		key = order.IdempotencyKey
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, number, customer_id, address_id, status, total, payment_method, idempotency_key, created_at, updated_at, estimated_delivery)
		VALUES ($1, to_char(now(), 'YYYYMMDD') || '-' || lpad(nextval('order_number_seq')::text, 6, '0'), $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING number`,
		order.ID, order.CustomerID, order.AddressID, order.Status, order.Total,
		order.PaymentMethod, key, order.CreatedAt, order.UpdatedAt, order.EstimatedDelivery,
	).Scan(&order.Number)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.Subtotal,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const orderColumns = `id, number, customer_id, address_id, status, total, payment_method, COALESCE(idempotency_key, ''), created_at, updated_at, paid_at, canceled_at, estimated_delivery`

func (r *orderRepo) FindById(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.scanWithItems(ctx, row)
}

func (r *orderRepo) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
	return r.scanWithItems(ctx, row)
}

func (r *orderRepo) scanWithItems(ctx context.Context, row *sql.Row) (*domain.Order, error) {
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	// The payment row rides along so callers can present its artifacts
	// (boleto line, PIX QR) without a second lookup.
	pay, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, order.ID))
	if err != nil {
		return nil, err
	}
	order.Payment = pay
	return order, nil
}

func (r *orderRepo) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) UpdateStatusFrom(ctx context.Context, tx *sql.Tx, order *domain.Order, from domain.OrderStatus) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = $2, paid_at = $3, canceled_at = $4
		WHERE id = $5 AND status = $6`,
		order.Status, order.UpdatedAt, order.PaidAt, order.CanceledAt, order.ID, from,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *orderRepo) FindExpiredBoletoOrders(ctx context.Context, now time.Time) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE o.status = $1 AND o.payment_method = $2
		  AND EXISTS (
			SELECT 1 FROM payments p
			WHERE p.order_id = o.id AND p.status = $3 AND p.boleto_expires_at < $4
		  )`,
		domain.OrderProcessing, domain.PaymentBoleto, domain.PaymentPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerID,
		&order.AddressID,
		&order.Status,
		&order.Total,
		&order.PaymentMethod,
		&order.IdempotencyKey,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.PaidAt,
		&order.CanceledAt,
		&order.EstimatedDelivery,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
