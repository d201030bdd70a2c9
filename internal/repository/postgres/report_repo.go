// internal/repository/postgres/report_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"hesabu-service/internal/domain/report"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// AggregateInvoices sums non-cancelled invoices dated within the period.
func (r *ReportRepository) AggregateInvoices(ctx context.Context, scope TenantScope, from, to time.Time) (*report.InvoiceAggregate, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(subtotal), 0),
		       COALESCE(SUM(vat_total), 0)
		FROM invoices
		WHERE tenant_id = $1
		  AND status <> 'CANCELLED'
		  AND invoice_date >= $2 AND invoice_date <= $3
	`

	var agg report.InvoiceAggregate
	err := r.db.QueryRow(ctx, query, scope.TenantID(), from, to).
		Scan(&agg.InvoiceCount, &agg.TotalIncome, &agg.OutputVAT)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate invoices: %w", err)
	}
	return &agg, nil
}

// AggregateExpenses sums expenses dated within the period. Recoverable VAT
// only counts rows flagged vat_recoverable.
func (r *ReportRepository) AggregateExpenses(ctx context.Context, scope TenantScope, from, to time.Time) (*report.ExpenseAggregate, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(amount), 0),
		       COALESCE(SUM(vat_amount), 0),
		       COALESCE(SUM(vat_amount) FILTER (WHERE vat_recoverable), 0)
		FROM expenses
		WHERE tenant_id = $1
		  AND date >= $2 AND date <= $3
	`

	var agg report.ExpenseAggregate
	err := r.db.QueryRow(ctx, query, scope.TenantID(), from, to).
		Scan(&agg.ExpenseCount, &agg.TotalExpenses, &agg.InputVAT, &agg.RecoverableVAT)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}
	return &agg, nil
}

// SalesBreakdown lists the invoices behind the aggregate, with customer
// names for the KRA export.
func (r *ReportRepository) SalesBreakdown(ctx context.Context, scope TenantScope, from, to time.Time) ([]report.SalesRow, error) {
	query := `
		SELECT i.invoice_number, c.name, i.invoice_date, i.subtotal, i.vat_total, i.grand_total, i.status
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id AND c.tenant_id = i.tenant_id
		WHERE i.tenant_id = $1
		  AND i.status <> 'CANCELLED'
		  AND i.invoice_date >= $2 AND i.invoice_date <= $3
		ORDER BY i.invoice_date ASC, i.invoice_number ASC
	`

	rows, err := r.db.Query(ctx, query, scope.TenantID(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales breakdown: %w", err)
	}
	defer rows.Close()

	out := []report.SalesRow{}
	for rows.Next() {
		var row report.SalesRow
		if err := rows.Scan(
			&row.InvoiceNumber, &row.CustomerName, &row.InvoiceDate,
			&row.Subtotal, &row.VATAmount, &row.Total, &row.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}

// PurchaseBreakdown lists the expenses behind the aggregate.
func (r *ReportRepository) PurchaseBreakdown(ctx context.Context, scope TenantScope, from, to time.Time) ([]report.PurchaseRow, error) {
	query := `
		SELECT date, category, COALESCE(description, ''), amount, vat_amount, vat_recoverable, total_amount
		FROM expenses
		WHERE tenant_id = $1
		  AND date >= $2 AND date <= $3
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.db.Query(ctx, query, scope.TenantID(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase breakdown: %w", err)
	}
	defer rows.Close()

	out := []report.PurchaseRow{}
	for rows.Next() {
		var row report.PurchaseRow
		if err := rows.Scan(
			&row.Date, &row.Category, &row.Description, &row.Amount,
			&row.VATAmount, &row.VATRecoverable, &row.TotalAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase row: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}
