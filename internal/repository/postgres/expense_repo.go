// internal/repository/postgres/expense_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hesabu-service/internal/domain/expense"
	"hesabu-service/internal/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, tenant_id, date, category, description, amount, vat_percent, vat_amount,
	total_amount, vat_recoverable, receipt_url, created_at, updated_at`

func scanExpense(row pgx.Row) (*expense.Expense, error) {
	var e expense.Expense
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Date, &e.Category, &e.Description,
		&e.Amount, &e.VATPercent, &e.VATAmount, &e.TotalAmount,
		&e.VATRecoverable, &e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	return &e, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, scope TenantScope, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, tenant_id, date, category, description, amount, vat_percent,
			vat_amount, total_amount, vat_recoverable, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		e.ID, scope.TenantID(), e.Date, e.Category, e.Description,
		e.Amount, e.VATPercent, e.VATAmount, e.TotalAmount,
		e.VATRecoverable, e.ReceiptURL,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	e.TenantID = scope.TenantID()
	return nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, scope TenantScope, id string) (*expense.Expense, error) {
	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE id = $1 AND tenant_id = $2`, expenseColumns)
	return scanExpense(r.db.QueryRow(ctx, query, id, scope.TenantID()))
}

func (r *ExpenseRepository) List(ctx context.Context, scope TenantScope, filters *expense.ListFilters) ([]expense.Expense, int64, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{scope.TenantID()}
	argPos := 2

	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, filters.Category)
		argPos++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argPos))
		args = append(args, *filters.DateFrom)
		argPos++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argPos))
		args = append(args, *filters.DateTo)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM expenses WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
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
		FROM expenses
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, expenseColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []expense.Expense{}
	for rows.Next() {
		var e expense.Expense
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.Date, &e.Category, &e.Description,
			&e.Amount, &e.VATPercent, &e.VATAmount, &e.TotalAmount,
			&e.VATRecoverable, &e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, total, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, scope TenantScope, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET date = $1, category = $2, description = $3, amount = $4, vat_percent = $5,
		    vat_amount = $6, total_amount = $7, vat_recoverable = $8, receipt_url = $9,
		    updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11
	`

	result, err := r.db.Exec(ctx, query,
		e.Date, e.Category, e.Description, e.Amount, e.VATPercent,
		e.VATAmount, e.TotalAmount, e.VATRecoverable, e.ReceiptURL,
		e.ID, scope.TenantID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, scope TenantScope, id string) error {
	query := `DELETE FROM expenses WHERE id = $1 AND tenant_id = $2`

	result, err := r.db.Exec(ctx, query, id, scope.TenantID())
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
