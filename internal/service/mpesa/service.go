// internal/service/mpesa/service.go
package mpesa

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hesabu-service/internal/domain/payment"
	"hesabu-service/internal/mpesa"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"
	paymentsvc "hesabu-service/internal/service/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway is the slice of the Daraja client the orchestrator calls. Tests
// substitute a fake so no HTTP is involved.
type Gateway interface {
	STKPush(ctx context.Context, phone string, amount decimal.Decimal, accountRef, description string) (*mpesa.STKPushResponse, error)
}

// initiationFailedPayload is stored on intents whose push never reached the
// provider, so a FAILED row can be told apart from a customer decline (which
// carries the full Daraja callback instead).
var initiationFailedPayload = []byte(`{"reason":"INITIATION_FAILED"}`)

// InitiateResult is what the client gets back after a push: the intent id to
// poll, the correlation id, and the provider's acknowledgement verbatim.
type InitiateResult struct {
	PaymentID         string                 `json:"payment_id"`
	CheckoutRequestID string                 `json:"checkout_request_id"`
	Response          *mpesa.STKPushResponse `json:"response"`
}

// MpesaService orchestrates the STK push flow: intent creation, the push to
// the gateway, and the asynchronous callback that settles the intent.
type MpesaService struct {
	gateway  Gateway
	payments *paymentsvc.PaymentService
	invoices paymentsvc.InvoiceStore
	logger   *zap.Logger
}

func NewMpesaService(gateway Gateway, payments *paymentsvc.PaymentService, invoices paymentsvc.InvoiceStore, logger *zap.Logger) *MpesaService {
	return &MpesaService{
		gateway:  gateway,
		payments: payments,
		invoices: invoices,
		logger:   logger,
	}
}

// InitiatePayment validates the request against the invoice, records a
// PENDING payment and pushes the payment prompt to the customer's phone. If
// the gateway rejects the push the intent is marked FAILED immediately so it
// never dangles waiting for a callback that cannot come.
func (s *MpesaService) InitiatePayment(ctx context.Context, scope postgres.TenantScope, input *payment.InitiateMpesaInput) (*InitiateResult, error) {
	if !payment.ValidPhoneNumber(input.PhoneNumber) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "phone number must be in 2547XXXXXXXX format")
	}

	inv, err := s.invoices.FindByID(ctx, scope, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	p, err := s.payments.CreateIntent(ctx, scope, inv.ID, input.Amount, payment.MethodMpesa)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Payment for invoice %s", inv.InvoiceNumber)
	resp, err := s.gateway.STKPush(ctx, input.PhoneNumber, input.Amount, inv.InvoiceNumber, desc)
	if err != nil {
		if _, markErr := s.payments.MarkFailed(ctx, p.ID, initiationFailedPayload); markErr != nil {
			s.logger.Error("failed to mark payment failed after push error",
				zap.String("payment_id", p.ID), zap.Error(markErr))
		}
		return nil, err
	}

	if err := s.payments.SetCheckoutRequestID(ctx, p.ID, resp.CheckoutRequestID); err != nil {
		return nil, err
	}

	s.logger.Info("stk push sent",
		zap.String("payment_id", p.ID),
		zap.String("invoice_id", inv.ID),
		zap.String("checkout_request_id", resp.CheckoutRequestID),
	)
	return &InitiateResult{
		PaymentID:         p.ID,
		CheckoutRequestID: resp.CheckoutRequestID,
		Response:          resp,
	}, nil
}

// ProcessCallback settles a payment from the raw Daraja callback body. It
// never returns an error for payloads that cannot be acted on (malformed,
// unknown correlation id, already settled): the provider retries on non-200
// and a retry cannot make those cases succeed.
func (s *MpesaService) ProcessCallback(ctx context.Context, raw []byte) error {
	outcome, err := mpesa.ParseCallback(raw)
	if errors.Is(err, mpesa.ErrMalformedCallback) {
		s.logger.Warn("dropping malformed callback", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	p, err := s.payments.FindByCheckoutRequestID(ctx, outcome.CheckoutRequestID)
	if errors.Is(err, xerrors.ErrNotFound) {
		s.logger.Warn("callback for unknown checkout request",
			zap.String("checkout_request_id", outcome.CheckoutRequestID))
		return nil
	}
	if err != nil {
		return err
	}

	if outcome.Success() {
		ref := sql.NullString{String: outcome.ReceiptNumber, Valid: outcome.ReceiptNumber != ""}
		_, err = s.payments.MarkSuccess(ctx, p.ID, ref, raw)
	} else {
		_, err = s.payments.MarkFailed(ctx, p.ID, raw)
	}
	if errors.Is(err, xerrors.ErrInvalidState) {
		// Duplicate delivery; the first one already settled the payment.
		s.logger.Info("ignoring duplicate callback",
			zap.String("payment_id", p.ID),
			zap.String("checkout_request_id", outcome.CheckoutRequestID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("callback processed",
		zap.String("payment_id", p.ID),
		zap.Int("result_code", outcome.ResultCode),
		zap.String("receipt", outcome.ReceiptNumber),
	)
	return nil
}
