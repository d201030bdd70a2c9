// internal/service/payment/ledger.go
package payment

import (
	"context"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/pkg/money"
	"hesabu-service/internal/repository/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconcile recomputes an invoice's balance and payment status from the sum
// of its SUCCESS payments. The sum is always read fresh; nothing is cached or
// incremented, so replays and races converge to the same result.
func (s *PaymentService) Reconcile(ctx context.Context, scope postgres.TenantScope, invoiceID string) error {
	inv, err := s.invoices.FindByID(ctx, scope, invoiceID)
	if err != nil {
		return err
	}

	paid, err := s.payments.SumSuccessful(ctx, invoiceID)
	if err != nil {
		return err
	}

	balance := money.ClampZero(inv.GrandTotal.Sub(paid))
	status := PaymentStatus(inv.Status, inv.GrandTotal, paid)

	if err := s.invoices.UpdateBalanceAndStatus(ctx, scope, invoiceID, balance, status); err != nil {
		return err
	}

	s.logger.Info("invoice reconciled",
		zap.String("invoice_id", invoiceID),
		zap.String("paid", paid.String()),
		zap.String("balance", balance.String()),
		zap.String("status", string(status)),
	)
	return nil
}

// PaymentStatus derives the ledger-owned invoice status from the grand total
// and the amount successfully paid. With no payments the current status is
// kept: the ledger never un-sends or un-cancels an invoice.
func PaymentStatus(current invoice.Status, grandTotal, paid decimal.Decimal) invoice.Status {
	if !paid.IsPositive() {
		return current
	}
	if paid.GreaterThanOrEqual(grandTotal) {
		return invoice.StatusPaid
	}
	return invoice.StatusPartiallyPaid
}
