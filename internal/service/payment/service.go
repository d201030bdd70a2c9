// internal/service/payment/service.go
package payment

import (
	"context"
	"database/sql"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/domain/payment"
	"hesabu-service/internal/pkg/money"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentStore is the persistence surface the payment lifecycle needs.
// *postgres.PaymentRepository satisfies it; tests substitute an in-memory
// fake.
type PaymentStore interface {
	Insert(ctx context.Context, scope postgres.TenantScope, p *payment.Payment) error
	FindByID(ctx context.Context, id string) (*payment.Payment, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.Payment, error)
	SetCheckoutRequestID(ctx context.Context, id, checkoutRequestID string) error
	MarkStatus(ctx context.Context, id string, status payment.Status, reference sql.NullString, raw []byte) (*payment.Payment, error)
	ListForInvoice(ctx context.Context, scope postgres.TenantScope, invoiceID string) ([]payment.Payment, error)
	SumSuccessful(ctx context.Context, invoiceID string) (decimal.Decimal, error)
}

// InvoiceStore is the slice of the invoice repository the ledger touches.
type InvoiceStore interface {
	FindByID(ctx context.Context, scope postgres.TenantScope, id string) (*invoice.Invoice, error)
	UpdateBalanceAndStatus(ctx context.Context, scope postgres.TenantScope, id string, balance decimal.Decimal, status invoice.Status) error
}

type PaymentService struct {
	payments PaymentStore
	invoices InvoiceStore
	logger   *zap.Logger
}

func NewPaymentService(payments PaymentStore, invoices InvoiceStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		invoices: invoices,
		logger:   logger,
	}
}

// CreateIntent records a PENDING payment against an invoice. The remaining
// balance is recomputed from the SUCCESS rows rather than read off the
// invoice, so a stale stored balance (a reconcile that failed mid-flight)
// cannot admit an overpayment. The check is still advisory under
// concurrency; the ledger recomputes from scratch when the payment lands.
func (s *PaymentService) CreateIntent(ctx context.Context, scope postgres.TenantScope, invoiceID string, amount decimal.Decimal, method payment.Method) (*payment.Payment, error) {
	if !amount.IsPositive() {
		return nil, xerrors.ErrInvalidAmount
	}

	inv, err := s.invoices.FindByID(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	paid, err := s.payments.SumSuccessful(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if err := validatePayable(inv, paid, amount); err != nil {
		return nil, err
	}

	p := &payment.Payment{
		ID:        ulid.Make().String(),
		InvoiceID: inv.ID,
		Amount:    amount,
		Method:    method,
		Status:    payment.StatusPending,
	}
	if err := s.payments.Insert(ctx, scope, p); err != nil {
		s.logger.Error("failed to insert payment intent",
			zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("payment intent created",
		zap.String("payment_id", p.ID),
		zap.String("invoice_id", inv.ID),
		zap.String("amount", amount.String()),
		zap.String("method", string(method)),
	)
	return p, nil
}

func validatePayable(inv *invoice.Invoice, paid, amount decimal.Decimal) error {
	switch inv.Status {
	case invoice.StatusDraft, invoice.StatusCancelled:
		return xerrors.ErrInvalidTransition
	case invoice.StatusPaid:
		return xerrors.ErrAlreadyPaid
	}
	remaining := money.ClampZero(inv.GrandTotal.Sub(paid))
	if !remaining.IsPositive() {
		return xerrors.ErrAlreadyPaid
	}
	if amount.GreaterThan(remaining) {
		return xerrors.ErrOverpayment
	}
	return nil
}

// RecordManual stores an out-of-band payment (cash, bank transfer) directly
// as SUCCESS and reconciles the invoice.
func (s *PaymentService) RecordManual(ctx context.Context, scope postgres.TenantScope, invoiceID string, input *payment.RecordManualInput) (*payment.Payment, error) {
	p, err := s.CreateIntent(ctx, scope, invoiceID, input.Amount, payment.MethodManual)
	if err != nil {
		return nil, err
	}

	var ref sql.NullString
	if input.Reference != "" {
		ref = sql.NullString{String: input.Reference, Valid: true}
	}
	return s.MarkSuccess(ctx, p.ID, ref, nil)
}

// MarkSuccess moves a PENDING payment to SUCCESS and reconciles the invoice
// balance. The store enforces the one-shot lifecycle: a payment already in a
// terminal status comes back as ErrInvalidState and nothing is re-applied.
func (s *PaymentService) MarkSuccess(ctx context.Context, id string, reference sql.NullString, raw []byte) (*payment.Payment, error) {
	p, err := s.payments.MarkStatus(ctx, id, payment.StatusSuccess, reference, raw)
	if err != nil {
		return nil, err
	}

	scope := postgres.NewTenantScope(p.TenantID)
	if err := s.Reconcile(ctx, scope, p.InvoiceID); err != nil {
		// The payment is SUCCESS; the invoice balance catches up on the
		// next reconcile.
		s.logger.Error("payment applied but reconcile failed",
			zap.String("payment_id", p.ID),
			zap.String("invoice_id", p.InvoiceID),
			zap.Error(err),
		)
		return p, err
	}

	s.logger.Info("payment succeeded",
		zap.String("payment_id", p.ID),
		zap.String("invoice_id", p.InvoiceID),
		zap.String("reference", reference.String),
	)
	return p, nil
}

// MarkFailed moves a PENDING payment to FAILED. Failed payments never touch
// the invoice balance; the customer retries with a fresh intent.
func (s *PaymentService) MarkFailed(ctx context.Context, id string, raw []byte) (*payment.Payment, error) {
	p, err := s.payments.MarkStatus(ctx, id, payment.StatusFailed, sql.NullString{}, raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment failed",
		zap.String("payment_id", p.ID),
		zap.String("invoice_id", p.InvoiceID),
	)
	return p, nil
}

// SetCheckoutRequestID stores the gateway correlation token on an intent.
func (s *PaymentService) SetCheckoutRequestID(ctx context.Context, id, checkoutRequestID string) error {
	return s.payments.SetCheckoutRequestID(ctx, id, checkoutRequestID)
}

// FindByCheckoutRequestID correlates a gateway callback to its intent.
func (s *PaymentService) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.Payment, error) {
	return s.payments.FindByCheckoutRequestID(ctx, checkoutRequestID)
}

// ListForInvoice returns an invoice's payment history oldest-first.
func (s *PaymentService) ListForInvoice(ctx context.Context, scope postgres.TenantScope, invoiceID string) ([]payment.Payment, error) {
	if _, err := s.invoices.FindByID(ctx, scope, invoiceID); err != nil {
		return nil, err
	}
	return s.payments.ListForInvoice(ctx, scope, invoiceID)
}

// Get returns a payment by id within the tenant scope, used by the client to
// poll an intent's status after an STK push.
func (s *PaymentService) Get(ctx context.Context, scope postgres.TenantScope, id string) (*payment.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TenantID != scope.TenantID() {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}
