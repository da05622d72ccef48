package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"lojinha/internal/domain"
)

type PaymentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, payment *domain.Payment) error
	FindByOrderId(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	FindByBoletoLine(ctx context.Context, line string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, payment *domain.Payment) error
}

type paymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) PaymentRepo {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	var line any
	if p.BoletoLine != "" {
		line = p.BoletoLine
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, method, status, amount, provider_ref, card_brand, card_last_digits, pix_qr_code, boleto_line, boleto_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.OrderID, p.Method, p.Status, p.Amount, p.ProviderRef,
		p.CardBrand, p.CardLastDigits, p.PixQRCode, line, p.BoletoExpiresAt, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

const paymentColumns = `id, order_id, method, status, amount, provider_ref, card_brand, card_last_digits, pix_qr_code, COALESCE(boleto_line, ''), boleto_expires_at, created_at, updated_at`

func (r *paymentRepo) FindByOrderId(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
	return scanPayment(row)
}

func (r *paymentRepo) FindByBoletoLine(ctx context.Context, line string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE boleto_line = $1`, line)
	return scanPayment(row)
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, provider_ref = $2, updated_at = now() WHERE id = $3`,
		p.Status, p.ProviderRef, p.ID,
	)
	return err
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.Method,
		&p.Status,
		&p.Amount,
		&p.ProviderRef,
		&p.CardBrand,
		&p.CardLastDigits,
		&p.PixQRCode,
		&p.BoletoLine,
		&p.BoletoExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
