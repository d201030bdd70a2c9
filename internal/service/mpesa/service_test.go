// internal/service/mpesa/service_test.go
package mpesa

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/domain/payment"
	darajaclient "hesabu-service/internal/mpesa"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"
	paymentsvc "hesabu-service/internal/service/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePaymentStore struct {
	payments map[string]*payment.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[string]*payment.Payment{}}
}

func (f *fakePaymentStore) Insert(_ context.Context, scope postgres.TenantScope, p *payment.Payment) error {
	cp := *p
	cp.TenantID = scope.TenantID()
	f.payments[cp.ID] = &cp
	p.TenantID = cp.TenantID
	return nil
}

func (f *fakePaymentStore) FindByID(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) FindByCheckoutRequestID(_ context.Context, checkoutRequestID string) (*payment.Payment, error) {
	for _, p := range f.payments {
		if p.MpesaReference.Valid && p.MpesaReference.String == checkoutRequestID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakePaymentStore) SetCheckoutRequestID(_ context.Context, id, checkoutRequestID string) error {
	p, ok := f.payments[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	p.MpesaReference = sql.NullString{String: checkoutRequestID, Valid: true}
	return nil
}

func (f *fakePaymentStore) MarkStatus(_ context.Context, id string, status payment.Status, reference sql.NullString, raw []byte) (*payment.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	if p.Status != payment.StatusPending {
		return nil, xerrors.ErrInvalidState
	}
	p.Status = status
	if reference.Valid {
		p.MpesaReference = reference
	}
	if raw != nil {
		p.RawPayload = raw
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) ListForInvoice(_ context.Context, scope postgres.TenantScope, invoiceID string) ([]payment.Payment, error) {
	out := []payment.Payment{}
	for _, p := range f.payments {
		if p.TenantID == scope.TenantID() && p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) SumSuccessful(_ context.Context, invoiceID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID && p.Status == payment.StatusSuccess {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type fakeInvoiceStore struct {
	invoices map[string]*invoice.Invoice
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{invoices: map[string]*invoice.Invoice{}}
}

func (f *fakeInvoiceStore) FindByID(_ context.Context, scope postgres.TenantScope, id string) (*invoice.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok || inv.TenantID != scope.TenantID() {
		return nil, xerrors.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvoiceStore) UpdateBalanceAndStatus(_ context.Context, scope postgres.TenantScope, id string, balance decimal.Decimal, status invoice.Status) error {
	inv, ok := f.invoices[id]
	if !ok || inv.TenantID != scope.TenantID() {
		return xerrors.ErrNotFound
	}
	inv.Balance = balance
	inv.Status = status
	return nil
}

type fakeGateway struct {
	resp  *darajaclient.STKPushResponse
	err   error
	calls int
}

func (f *fakeGateway) STKPush(_ context.Context, phone string, amount decimal.Decimal, accountRef, description string) (*darajaclient.STKPushResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestOrchestrator(gw *fakeGateway) (*MpesaService, *fakePaymentStore, *fakeInvoiceStore) {
	payments := newFakePaymentStore()
	invoices := newFakeInvoiceStore()
	psvc := paymentsvc.NewPaymentService(payments, invoices, zap.NewNop())
	return NewMpesaService(gw, psvc, invoices, zap.NewNop()), payments, invoices
}

func seedInvoice(store *fakeInvoiceStore, tenantID, id string, total decimal.Decimal) {
	store.invoices[id] = &invoice.Invoice{
		ID:            id,
		TenantID:      tenantID,
		InvoiceNumber: "INV-2025-001",
		Status:        invoice.StatusSent,
		GrandTotal:    total,
		Balance:       total,
	}
}

func successCallback(checkoutRequestID, receipt string, amount string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": %q,
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {"Item": [
				{"Name": "Amount", "Value": %s},
				{"Name": "MpesaReceiptNumber", "Value": %q},
				{"Name": "TransactionDate", "Value": 20250601121530},
				{"Name": "PhoneNumber", "Value": 254712345678}
			]}
		}}
	}`, checkoutRequestID, amount, receipt))
}

func failureCallback(checkoutRequestID string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": %q,
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user"
		}}
	}`, checkoutRequestID))
}

func TestInitiatePaymentStoresCheckoutRequestID(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{resp: &darajaclient.STKPushResponse{
		CheckoutRequestID: "ws_CO_010620251200001",
		ResponseCode:      "0",
	}}
	svc, payments, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	res, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
		InvoiceID:   "inv-1",
		Amount:      dec("400"),
		PhoneNumber: "254712345678",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, "ws_CO_010620251200001", res.CheckoutRequestID)
	assert.Equal(t, "0", res.Response.ResponseCode)

	stored, err := payments.FindByCheckoutRequestID(ctx, "ws_CO_010620251200001")
	require.NoError(t, err)
	assert.Equal(t, res.PaymentID, stored.ID)
	assert.Equal(t, payment.StatusPending, stored.Status)
}

func TestInitiatePaymentRejectsInvalidPhone(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{resp: &darajaclient.STKPushResponse{CheckoutRequestID: "x"}}
	svc, payments, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	for name, phone := range map[string]string{
		"local format":  "0712345678",
		"plus prefix":   "+254712345678",
		"too short":     "25471234567",
		"too long":      "2547123456789",
		"not safaricom": "254112345678",
		"letters":       "2547abcdefgh",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
				InvoiceID:   "inv-1",
				Amount:      dec("400"),
				PhoneNumber: phone,
			})
			assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
		})
	}

	// Nothing was pushed and no intent was recorded.
	assert.Equal(t, 0, gw.calls)
	assert.Empty(t, payments.payments)
}

func TestInitiatePaymentGatewayFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{err: &xerrors.GatewayError{Op: "stkpush", Status: 503}}
	svc, payments, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	_, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
		InvoiceID:   "inv-1",
		Amount:      dec("400"),
		PhoneNumber: "254712345678",
	})
	require.Error(t, err)
	assert.True(t, xerrors.IsGatewayError(err))

	// The intent must not dangle as PENDING, and the stored payload must say
	// the push never went out rather than looking like a customer decline.
	require.Len(t, payments.payments, 1)
	for _, p := range payments.payments {
		assert.Equal(t, payment.StatusFailed, p.Status)
		assert.JSONEq(t, `{"reason":"INITIATION_FAILED"}`, string(p.RawPayload))
		assert.False(t, p.MpesaReference.Valid)
	}
}

func TestInitiatePaymentRejectsBeforePush(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{resp: &darajaclient.STKPushResponse{CheckoutRequestID: "x"}}
	svc, _, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	_, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
		InvoiceID:   "inv-1",
		Amount:      dec("1500"),
		PhoneNumber: "254712345678",
	})
	assert.ErrorIs(t, err, xerrors.ErrOverpayment)
	assert.Equal(t, 0, gw.calls)
}

func TestProcessCallbackSuccess(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{resp: &darajaclient.STKPushResponse{CheckoutRequestID: "ws_CO_1"}}
	svc, payments, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	res, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
		InvoiceID: "inv-1", Amount: dec("400"), PhoneNumber: "254712345678",
	})
	require.NoError(t, err)

	raw := successCallback("ws_CO_1", "TGH7SK61SV", "400")
	require.NoError(t, svc.ProcessCallback(ctx, raw))

	stored, err := payments.FindByID(ctx, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, stored.Status)
	assert.Equal(t, "TGH7SK61SV", stored.MpesaReference.String)
	assert.JSONEq(t, string(raw), string(stored.RawPayload))

	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(inv.Balance))
	assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)
}

func TestProcessCallbackDuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{resp: &darajaclient.STKPushResponse{CheckoutRequestID: "ws_CO_1"}}
	svc, _, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	_, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
		InvoiceID: "inv-1", Amount: dec("400"), PhoneNumber: "254712345678",
	})
	require.NoError(t, err)

	raw := successCallback("ws_CO_1", "TGH7SK61SV", "400")
	require.NoError(t, svc.ProcessCallback(ctx, raw))
	require.NoError(t, svc.ProcessCallback(ctx, raw))

	// Applied exactly once.
	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(inv.Balance))
}

func TestProcessCallbackFailureResult(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	gw := &fakeGateway{resp: &darajaclient.STKPushResponse{CheckoutRequestID: "ws_CO_1"}}
	svc, payments, invoices := newTestOrchestrator(gw)
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"))

	res, err := svc.InitiatePayment(ctx, scope, &payment.InitiateMpesaInput{
		InvoiceID: "inv-1", Amount: dec("400"), PhoneNumber: "254712345678",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ProcessCallback(ctx, failureCallback("ws_CO_1")))

	stored, err := payments.FindByID(ctx, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, stored.Status)

	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(inv.Balance))
	assert.Equal(t, invoice.StatusSent, inv.Status)
}

func TestProcessCallbackUnknownCheckoutRequest(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{}
	svc, _, _ := newTestOrchestrator(gw)

	err := svc.ProcessCallback(ctx, successCallback("ws_CO_nobody", "X", "100"))
	assert.NoError(t, err)
}

func TestProcessCallbackMalformed(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{}
	svc, _, _ := newTestOrchestrator(gw)

	for name, raw := range map[string]string{
		"not json":         `{{{`,
		"empty object":     `{}`,
		"missing checkout": `{"Body":{"stkCallback":{"ResultCode":0}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, svc.ProcessCallback(ctx, []byte(raw)))
		})
	}
}
