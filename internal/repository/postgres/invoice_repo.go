// internal/repository/postgres/invoice_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, tenant_id, invoice_number, customer_id, invoice_date, due_date, status,
	subtotal, vat_total, grand_total, balance, notes, created_at, updated_at, sent_at, paid_at`

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.CustomerID,
		&inv.InvoiceDate, &inv.DueDate, &inv.Status,
		&inv.Subtotal, &inv.VATTotal, &inv.GrandTotal, &inv.Balance,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt, &inv.SentAt, &inv.PaidAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	return &inv, nil
}

// CreateWithItems inserts the invoice and its items in one transaction.
func (r *InvoiceRepository) CreateWithItems(ctx context.Context, scope TenantScope, inv *invoice.Invoice, items []invoice.Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO invoices (id, tenant_id, invoice_number, customer_id, invoice_date, due_date,
			status, subtotal, vat_total, grand_total, balance, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		inv.ID, scope.TenantID(), inv.InvoiceNumber, inv.CustomerID,
		inv.InvoiceDate, inv.DueDate, inv.Status,
		inv.Subtotal, inv.VATTotal, inv.GrandTotal, inv.Balance, inv.Notes,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price, line_total, vat_percent, vat_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	for i := range items {
		item := &items[i]
		err = tx.QueryRow(ctx, itemQuery,
			item.ID, inv.ID, item.Description, item.Quantity, item.UnitPrice,
			item.LineTotal, item.VATPercent, item.VATAmount,
		).Scan(&item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create invoice item: %w", err)
		}
		item.InvoiceID = inv.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit invoice: %w", err)
	}
	inv.TenantID = scope.TenantID()
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, scope TenantScope, id string) (*invoice.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1 AND tenant_id = $2`, invoiceColumns)
	return scanInvoice(r.db.QueryRow(ctx, query, id, scope.TenantID()))
}

// ListItems returns the items of an invoice oldest-first.
func (r *InvoiceRepository) ListItems(ctx context.Context, invoiceID string) ([]invoice.Item, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, line_total, vat_percent, vat_amount, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	items := []invoice.Item{}
	for rows.Next() {
		var item invoice.Item
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.LineTotal, &item.VATPercent, &item.VATAmount,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *InvoiceRepository) List(ctx context.Context, scope TenantScope, filters *invoice.ListFilters) ([]invoice.Invoice, int64, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{scope.TenantID()}
	argPos := 2

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("invoice_date >= $%d", argPos))
		args = append(args, *filters.DateFrom)
		argPos++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("invoice_date <= $%d", argPos))
		args = append(args, *filters.DateTo)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM invoices
		WHERE %s
		ORDER BY invoice_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, invoiceColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.CustomerID,
			&inv.InvoiceDate, &inv.DueDate, &inv.Status,
			&inv.Subtotal, &inv.VATTotal, &inv.GrandTotal, &inv.Balance,
			&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt, &inv.SentAt, &inv.PaidAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	return invoices, total, nil
}

// UpdateTotals stores recomputed totals on the invoice.
func (r *InvoiceRepository) UpdateTotals(ctx context.Context, scope TenantScope, id string, subtotal, vatTotal, grandTotal decimal.Decimal) error {
	query := `
		UPDATE invoices
		SET subtotal = $1, vat_total = $2, grand_total = $3, updated_at = NOW()
		WHERE id = $4 AND tenant_id = $5
	`

	result, err := r.db.Exec(ctx, query, subtotal, vatTotal, grandTotal, id, scope.TenantID())
	if err != nil {
		return fmt.Errorf("failed to update invoice totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus applies a manual status transition conditionally on the row
// still holding the expected current status. Zero rows affected means the
// invoice moved concurrently (or does not exist for the tenant).
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, scope TenantScope, id string, from, to invoice.Status) (int64, error) {
	query := `
		UPDATE invoices
		SET status = $1,
		    sent_at = CASE WHEN $1 = 'SENT' THEN NOW() ELSE sent_at END,
		    updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, to, id, scope.TenantID(), from)
	if err != nil {
		return 0, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return result.RowsAffected(), nil
}

// UpdateBalanceAndStatus persists the ledger's recomputed balance and status
// in one atomic update keyed by (id, tenant_id).
func (r *InvoiceRepository) UpdateBalanceAndStatus(ctx context.Context, scope TenantScope, id string, balance decimal.Decimal, status invoice.Status) error {
	query := `
		UPDATE invoices
		SET balance = $1, status = $2,
		    paid_at = CASE WHEN $2 = 'PAID' AND paid_at IS NULL THEN NOW() ELSE paid_at END,
		    updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4
	`

	result, err := r.db.Exec(ctx, query, balance, status, id, scope.TenantID())
	if err != nil {
		return fmt.Errorf("failed to update invoice balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// MarkOverdue flips sent or unpaid invoices past their due date to OVERDUE.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, scope TenantScope) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'OVERDUE', updated_at = NOW()
		WHERE tenant_id = $1
		  AND status IN ('SENT', 'UNPAID', 'PARTIALLY_PAID')
		  AND due_date < NOW()
	`

	result, err := r.db.Exec(ctx, query, scope.TenantID())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	return result.RowsAffected(), nil
}

// Delete removes a draft invoice and its items. Non-draft invoices are
// never deleted.
func (r *InvoiceRepository) Delete(ctx context.Context, scope TenantScope, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM invoice_items WHERE invoice_id = (
			SELECT id FROM invoices WHERE id = $1 AND tenant_id = $2 AND status = 'DRAFT'
		)`, id, scope.TenantID()); err != nil {
		return fmt.Errorf("failed to delete invoice items: %w", err)
	}

	result, err := tx.Exec(ctx,
		`DELETE FROM invoices WHERE id = $1 AND tenant_id = $2 AND status = 'DRAFT'`,
		id, scope.TenantID())
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}
