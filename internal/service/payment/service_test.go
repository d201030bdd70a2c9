// internal/service/payment/service_test.go
package payment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/domain/payment"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

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
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
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
	p.UpdatedAt = time.Now()
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

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedInvoice(store *fakeInvoiceStore, tenantID, id string, total decimal.Decimal, status invoice.Status) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            id,
		TenantID:      tenantID,
		InvoiceNumber: "INV-" + id,
		Status:        status,
		GrandTotal:    total,
		Balance:       total,
	}
	store.invoices[id] = inv
	return inv
}

func newTestService() (*PaymentService, *fakePaymentStore, *fakeInvoiceStore) {
	payments := newFakePaymentStore()
	invoices := newFakeInvoiceStore()
	svc := NewPaymentService(payments, invoices, zap.NewNop())
	return svc, payments, invoices
}

func TestCreateIntentValidation(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, _, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)

	cases := map[string]struct {
		invoiceID string
		amount    decimal.Decimal
		setup     func()
		wantErr   error
	}{
		"zero amount": {
			invoiceID: "inv-1", amount: decimal.Zero,
			wantErr: xerrors.ErrInvalidAmount,
		},
		"negative amount": {
			invoiceID: "inv-1", amount: dec("-5"),
			wantErr: xerrors.ErrInvalidAmount,
		},
		"unknown invoice": {
			invoiceID: "missing", amount: dec("100"),
			wantErr: xerrors.ErrNotFound,
		},
		"overpayment": {
			invoiceID: "inv-1", amount: dec("1000.01"),
			wantErr: xerrors.ErrOverpayment,
		},
		"paid invoice": {
			invoiceID: "inv-paid", amount: dec("100"),
			setup: func() {
				inv := seedInvoice(invoices, "biz-1", "inv-paid", dec("500"), invoice.StatusPaid)
				inv.Balance = decimal.Zero
			},
			wantErr: xerrors.ErrAlreadyPaid,
		},
		"draft invoice": {
			invoiceID: "inv-draft", amount: dec("100"),
			setup: func() {
				seedInvoice(invoices, "biz-1", "inv-draft", dec("500"), invoice.StatusDraft)
			},
			wantErr: xerrors.ErrInvalidTransition,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup()
			}
			_, err := svc.CreateIntent(ctx, scope, tc.invoiceID, tc.amount, payment.MethodMpesa)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateIntentChecksFreshPaidSum(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, payments, invoices := newTestService()
	// The stored balance is stale: a reconcile after this payment never ran,
	// so the invoice still claims the full 1000 is outstanding.
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)
	payments.payments["p-old"] = &payment.Payment{
		ID:        "p-old",
		TenantID:  "biz-1",
		InvoiceID: "inv-1",
		Amount:    dec("600"),
		Method:    payment.MethodMpesa,
		Status:    payment.StatusSuccess,
	}

	_, err := svc.CreateIntent(ctx, scope, "inv-1", dec("500"), payment.MethodMpesa)
	assert.ErrorIs(t, err, xerrors.ErrOverpayment)

	p, err := svc.CreateIntent(ctx, scope, "inv-1", dec("400"), payment.MethodMpesa)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)

	// Once the SUCCESS rows cover the grand total, the stale balance cannot
	// admit another intent either.
	_, err = svc.MarkSuccess(ctx, p.ID, sql.NullString{String: "RCP003", Valid: true}, nil)
	require.NoError(t, err)
	_, err = svc.CreateIntent(ctx, scope, "inv-1", dec("1"), payment.MethodMpesa)
	assert.ErrorIs(t, err, xerrors.ErrAlreadyPaid)
}

func TestCreateIntentStartsPending(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, _, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)

	p, err := svc.CreateIntent(ctx, scope, "inv-1", dec("400"), payment.MethodMpesa)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, "biz-1", p.TenantID)
	assert.True(t, dec("400").Equal(p.Amount))

	// A pending intent reserves nothing; the balance only moves on SUCCESS.
	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(inv.Balance))
}

func TestPartialThenFinalPayment(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, _, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)

	p1, err := svc.CreateIntent(ctx, scope, "inv-1", dec("400"), payment.MethodMpesa)
	require.NoError(t, err)
	_, err = svc.MarkSuccess(ctx, p1.ID, sql.NullString{String: "RCP001", Valid: true}, nil)
	require.NoError(t, err)

	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(inv.Balance), "balance after partial: %s", inv.Balance)
	assert.Equal(t, invoice.StatusPartiallyPaid, inv.Status)

	p2, err := svc.CreateIntent(ctx, scope, "inv-1", dec("600"), payment.MethodMpesa)
	require.NoError(t, err)
	_, err = svc.MarkSuccess(ctx, p2.ID, sql.NullString{String: "RCP002", Valid: true}, nil)
	require.NoError(t, err)

	inv, err = invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, inv.Balance.IsZero(), "balance after final: %s", inv.Balance)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
}

func TestMarkSuccessIsOneShot(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, _, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)

	p, err := svc.CreateIntent(ctx, scope, "inv-1", dec("400"), payment.MethodMpesa)
	require.NoError(t, err)

	_, err = svc.MarkSuccess(ctx, p.ID, sql.NullString{String: "RCP001", Valid: true}, nil)
	require.NoError(t, err)

	_, err = svc.MarkSuccess(ctx, p.ID, sql.NullString{String: "RCP001", Valid: true}, nil)
	assert.ErrorIs(t, err, xerrors.ErrInvalidState)

	// The replay must not double-apply the amount.
	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(inv.Balance))
}

func TestMarkFailedLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, payments, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)

	p, err := svc.CreateIntent(ctx, scope, "inv-1", dec("400"), payment.MethodMpesa)
	require.NoError(t, err)

	failed, err := svc.MarkFailed(ctx, p.ID, []byte(`{"ResultCode":1032}`))
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, failed.Status)

	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(inv.Balance))
	assert.Equal(t, invoice.StatusSent, inv.Status)

	// The failed row stays for audit; a fresh success still settles fully.
	stored, err := payments.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, stored.Status)

	p2, err := svc.CreateIntent(ctx, scope, "inv-1", dec("1000"), payment.MethodMpesa)
	require.NoError(t, err)
	_, err = svc.MarkSuccess(ctx, p2.ID, sql.NullString{String: "RCP009", Valid: true}, nil)
	require.NoError(t, err)

	inv, err = invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
}

func TestRecordManualSettlesImmediately(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, _, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("250"), invoice.StatusSent)

	p, err := svc.RecordManual(ctx, scope, "inv-1", &payment.RecordManualInput{
		Amount:    dec("250"),
		Reference: "BANK-TXN-77",
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, p.Status)
	assert.Equal(t, payment.MethodManual, p.Method)
	assert.Equal(t, "BANK-TXN-77", p.MpesaReference.String)

	inv, err := invoices.FindByID(ctx, scope, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
	assert.True(t, inv.Balance.IsZero())
}

func TestGetIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc, _, invoices := newTestService()
	seedInvoice(invoices, "biz-1", "inv-1", dec("1000"), invoice.StatusSent)

	p, err := svc.CreateIntent(ctx, scope, "inv-1", dec("100"), payment.MethodMpesa)
	require.NoError(t, err)

	got, err := svc.Get(ctx, scope, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(ctx, postgres.NewTenantScope("biz-2"), p.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestPaymentStatus(t *testing.T) {
	cases := map[string]struct {
		current invoice.Status
		total   string
		paid    string
		want    invoice.Status
	}{
		"no payments keeps current":  {invoice.StatusSent, "1000", "0", invoice.StatusSent},
		"partial":                    {invoice.StatusSent, "1000", "400", invoice.StatusPartiallyPaid},
		"exact":                      {invoice.StatusSent, "1000", "1000", invoice.StatusPaid},
		"over":                       {invoice.StatusPartiallyPaid, "1000", "1200", invoice.StatusPaid},
		"overdue with no payments":   {invoice.StatusOverdue, "1000", "0", invoice.StatusOverdue},
		"overdue partially settled":  {invoice.StatusOverdue, "1000", "100", invoice.StatusPartiallyPaid},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := PaymentStatus(tc.current, dec(tc.total), dec(tc.paid))
			assert.Equal(t, tc.want, got)
		})
	}
}
