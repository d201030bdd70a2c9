// internal/service/expense/expense.go
package expense

import (
	"context"
	"database/sql"

	"hesabu-service/internal/domain/expense"
	"hesabu-service/internal/pkg/money"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type ExpenseService struct {
	expenseRepo *postgres.ExpenseRepository
	logger      *zap.Logger
}

func NewExpenseService(expenseRepo *postgres.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create records an expense. VAT and total are derived from the net amount
// and rate, never taken from the client.
func (s *ExpenseService) Create(ctx context.Context, scope postgres.TenantScope, input *expense.CreateExpenseInput) (*expense.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "amount must be positive")
	}
	if input.VATPercent.IsNegative() {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "VAT percent cannot be negative")
	}
	if !expense.ValidCategory(input.Category) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "unknown expense category")
	}

	vatAmount := money.VAT(input.Amount, input.VATPercent)
	e := &expense.Expense{
		ID:             ulid.Make().String(),
		Date:           input.Date,
		Category:       input.Category,
		Description:    nullString(input.Description),
		Amount:         money.Round2(input.Amount),
		VATPercent:     input.VATPercent,
		VATAmount:      vatAmount,
		TotalAmount:    money.Sum(input.Amount, vatAmount),
		VATRecoverable: input.VATRecoverable,
		ReceiptURL:     nullString(input.ReceiptURL),
	}

	if err := s.expenseRepo.Create(ctx, scope, e); err != nil {
		return nil, err
	}

	s.logger.Info("expense recorded",
		zap.String("expense_id", e.ID),
		zap.String("category", e.Category),
		zap.String("total", e.TotalAmount.String()),
	)
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, scope postgres.TenantScope, id string) (*expense.Expense, error) {
	return s.expenseRepo.FindByID(ctx, scope, id)
}

func (s *ExpenseService) List(ctx context.Context, scope postgres.TenantScope, filters *expense.ListFilters) (*expense.ListResponse, error) {
	if filters.Category != "" && !expense.ValidCategory(filters.Category) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "unknown expense category")
	}

	expenses, total, err := s.expenseRepo.List(ctx, scope, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}
	return &expense.ListResponse{
		Expenses:   expenses,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update patches an expense and rederives VAT and total.
func (s *ExpenseService) Update(ctx context.Context, scope postgres.TenantScope, id string, input *expense.UpdateExpenseInput) (*expense.Expense, error) {
	e, err := s.expenseRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		e.Date = *input.Date
	}
	if input.Category != nil {
		if !expense.ValidCategory(*input.Category) {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "unknown expense category")
		}
		e.Category = *input.Category
	}
	if input.Description != nil {
		e.Description = nullString(*input.Description)
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "amount must be positive")
		}
		e.Amount = money.Round2(*input.Amount)
	}
	if input.VATPercent != nil {
		if input.VATPercent.IsNegative() {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "VAT percent cannot be negative")
		}
		e.VATPercent = *input.VATPercent
	}
	if input.VATRecoverable != nil {
		e.VATRecoverable = *input.VATRecoverable
	}
	if input.ReceiptURL != nil {
		e.ReceiptURL = nullString(*input.ReceiptURL)
	}

	e.VATAmount = money.VAT(e.Amount, e.VATPercent)
	e.TotalAmount = money.Sum(e.Amount, e.VATAmount)

	if err := s.expenseRepo.Update(ctx, scope, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, scope postgres.TenantScope, id string) error {
	return s.expenseRepo.Delete(ctx, scope, id)
}

// Categories returns the fixed category catalogue.
func (s *ExpenseService) Categories() []expense.Category {
	return expense.Categories
}
