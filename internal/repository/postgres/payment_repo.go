// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hesabu-service/internal/domain/payment"
	"hesabu-service/internal/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, tenant_id, invoice_id, amount, method, status, mpesa_reference, raw_mpesa_payload, created_at, updated_at`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.TenantID, &p.InvoiceID, &p.Amount, &p.Method, &p.Status,
		&p.MpesaReference, &p.RawPayload, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) Insert(ctx context.Context, scope TenantScope, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, tenant_id, invoice_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.ID, scope.TenantID(), p.InvoiceID, p.Amount, p.Method, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	p.TenantID = scope.TenantID()
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	return scanPayment(r.db.QueryRow(ctx, query, id))
}

// FindByCheckoutRequestID correlates an asynchronous callback back to its
// payment. mpesa_reference is the indexed correlation column and the only
// lookup path.
func (r *PaymentRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE mpesa_reference = $1`, paymentColumns)
	return scanPayment(r.db.QueryRow(ctx, query, checkoutRequestID))
}

// SetCheckoutRequestID stores the correlation token issued by the gateway at
// push time.
func (r *PaymentRepository) SetCheckoutRequestID(ctx context.Context, id, checkoutRequestID string) error {
	query := `UPDATE payments SET mpesa_reference = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Exec(ctx, query, checkoutRequestID, id)
	if err != nil {
		return fmt.Errorf("failed to set checkout request id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// MarkStatus moves a PENDING payment to a terminal status. The PENDING
// precondition lives in the UPDATE itself so two concurrent deliveries of
// the same callback cannot both apply: the second one matches zero rows and
// gets ErrInvalidState (or ErrNotFound when the payment never existed).
func (r *PaymentRepository) MarkStatus(ctx context.Context, id string, status payment.Status, reference sql.NullString, raw []byte) (*payment.Payment, error) {
	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $1,
		    mpesa_reference = COALESCE($2, mpesa_reference),
		    raw_mpesa_payload = COALESCE($3, raw_mpesa_payload),
		    updated_at = NOW()
		WHERE id = $4 AND status = 'PENDING'
		RETURNING %s
	`, paymentColumns)

	p, err := scanPayment(r.db.QueryRow(ctx, query, status, reference, raw, id))
	if errors.Is(err, xerrors.ErrNotFound) {
		// Disambiguate: missing row vs. already-terminal row.
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, xerrors.ErrInvalidState
		}
		return nil, xerrors.ErrNotFound
	}
	return p, err
}

// ListForInvoice returns the payments against an invoice oldest-first, for
// audit and receipt display.
func (r *PaymentRepository) ListForInvoice(ctx context.Context, scope TenantScope, invoiceID string) ([]payment.Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE tenant_id = $1 AND invoice_id = $2
		ORDER BY created_at ASC, id ASC
	`, paymentColumns)

	rows, err := r.db.Query(ctx, query, scope.TenantID(), invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		var p payment.Payment
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.InvoiceID, &p.Amount, &p.Method, &p.Status,
			&p.MpesaReference, &p.RawPayload, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// SumSuccessful computes the total of SUCCESS payments against an invoice.
// Always read fresh at reconciliation time; never cached.
func (r *PaymentRepository) SumSuccessful(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE invoice_id = $1 AND status = 'SUCCESS'
	`

	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum successful payments: %w", err)
	}
	return sum, nil
}
