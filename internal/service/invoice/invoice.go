// internal/service/invoice/invoice.go
package invoice

import (
	"context"
	"database/sql"
	"errors"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/pkg/money"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InvoiceService struct {
	invoiceRepo  *postgres.InvoiceRepository
	customerRepo *postgres.CustomerRepository
	logger       *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *postgres.InvoiceRepository,
	customerRepo *postgres.CustomerRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Create builds an invoice from its line items. Every money figure is
// computed server-side: line totals, VAT, the grand total and the opening
// balance. Client-supplied totals are never trusted.
func (s *InvoiceService) Create(ctx context.Context, scope postgres.TenantScope, input *invoice.CreateInvoiceInput) (*invoice.WithItems, error) {
	if input.DueDate.Before(input.InvoiceDate) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "due date before invoice date")
	}

	// The customer must belong to the same tenant.
	if _, err := s.customerRepo.FindByID(ctx, scope, input.CustomerID); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "unknown customer")
		}
		return nil, err
	}

	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	subtotal, vatTotal := decimalTotals(items)
	grandTotal := money.Sum(subtotal, vatTotal)

	inv := &invoice.Invoice{
		ID:            ulid.Make().String(),
		InvoiceNumber: input.InvoiceNumber,
		CustomerID:    input.CustomerID,
		InvoiceDate:   input.InvoiceDate,
		DueDate:       input.DueDate,
		Status:        invoice.StatusDraft,
		Subtotal:      subtotal,
		VATTotal:      vatTotal,
		GrandTotal:    grandTotal,
		Balance:       grandTotal,
		Notes:         sql.NullString{String: input.Notes, Valid: input.Notes != ""},
	}

	if err := s.invoiceRepo.CreateWithItems(ctx, scope, inv, items); err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("grand_total", grandTotal.String()),
	)
	return &invoice.WithItems{Invoice: *inv, Items: items}, nil
}

func buildItems(inputs []invoice.CreateItemInput) ([]invoice.Item, error) {
	items := make([]invoice.Item, 0, len(inputs))
	for _, in := range inputs {
		if !in.Quantity.IsPositive() {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "item quantity must be positive")
		}
		if in.UnitPrice.IsNegative() {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "item unit price cannot be negative")
		}
		if in.VATPercent.IsNegative() {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "item VAT percent cannot be negative")
		}

		lineTotal := money.Line(in.Quantity, in.UnitPrice)
		items = append(items, invoice.Item{
			ID:          ulid.Make().String(),
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   lineTotal,
			VATPercent:  in.VATPercent,
			VATAmount:   money.VAT(lineTotal, in.VATPercent),
		})
	}
	return items, nil
}

func decimalTotals(items []invoice.Item) (subtotal, vatTotal decimal.Decimal) {
	for _, item := range items {
		subtotal = money.Sum(subtotal, item.LineTotal)
		vatTotal = money.Sum(vatTotal, item.VATAmount)
	}
	return subtotal, vatTotal
}

// Get returns an invoice with its items.
func (s *InvoiceService) Get(ctx context.Context, scope postgres.TenantScope, id string) (*invoice.WithItems, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	items, err := s.invoiceRepo.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return &invoice.WithItems{Invoice: *inv, Items: items}, nil
}

// Recalculate re-derives the stored totals from the invoice's items and
// persists them. Idempotent; used to repair an invoice whose totals drifted
// from its items.
func (s *InvoiceService) Recalculate(ctx context.Context, scope postgres.TenantScope, id string) (*invoice.WithItems, error) {
	inv, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	subtotal, vatTotal := decimalTotals(inv.Items)
	grandTotal := money.Sum(subtotal, vatTotal)
	if err := s.invoiceRepo.UpdateTotals(ctx, scope, id, subtotal, vatTotal, grandTotal); err != nil {
		return nil, err
	}

	inv.Subtotal = subtotal
	inv.VATTotal = vatTotal
	inv.GrandTotal = grandTotal
	return inv, nil
}

// List returns a page of invoices filtered by status and date range.
func (s *InvoiceService) List(ctx context.Context, scope postgres.TenantScope, filters *invoice.ListFilters) (*invoice.ListResponse, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, scope, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}
	return &invoice.ListResponse{
		Invoices:   invoices,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus applies a manual transition (send, cancel). Ledger-owned
// statuses are rejected here; they only move through payment reconciliation.
func (s *InvoiceService) UpdateStatus(ctx context.Context, scope postgres.TenantScope, id string, to invoice.Status) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if !invoice.CanTransition(inv.Status, to) {
		return nil, xerrors.ErrInvalidTransition
	}

	affected, err := s.invoiceRepo.UpdateStatus(ctx, scope, id, inv.Status, to)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// The status moved between read and write.
		return nil, xerrors.ErrInvalidTransition
	}

	s.logger.Info("invoice status changed",
		zap.String("invoice_id", id),
		zap.String("from", string(inv.Status)),
		zap.String("to", string(to)),
	)
	return s.invoiceRepo.FindByID(ctx, scope, id)
}

// Delete removes a draft. Anything past DRAFT is immutable history and can
// only be cancelled.
func (s *InvoiceService) Delete(ctx context.Context, scope postgres.TenantScope, id string) error {
	inv, err := s.invoiceRepo.FindByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if inv.Status != invoice.StatusDraft {
		return xerrors.ErrInvalidTransition
	}
	return s.invoiceRepo.Delete(ctx, scope, id)
}

// MarkOverdue flips the tenant's past-due invoices to OVERDUE and returns
// how many moved. Invoked lazily from list/report reads rather than a
// background sweeper.
func (s *InvoiceService) MarkOverdue(ctx context.Context, scope postgres.TenantScope) (int64, error) {
	moved, err := s.invoiceRepo.MarkOverdue(ctx, scope)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		s.logger.Info("invoices marked overdue",
			zap.String("tenant_id", scope.TenantID()),
			zap.Int64("count", moved),
		)
	}
	return moved, nil
}
