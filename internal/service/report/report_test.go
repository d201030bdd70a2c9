// internal/service/report/report_test.go
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"hesabu-service/internal/domain/report"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAggregator struct {
	invoices  report.InvoiceAggregate
	expenses  report.ExpenseAggregate
	sales     []report.SalesRow
	purchases []report.PurchaseRow
}

func (f *fakeAggregator) AggregateInvoices(_ context.Context, _ postgres.TenantScope, _, _ time.Time) (*report.InvoiceAggregate, error) {
	agg := f.invoices
	return &agg, nil
}

func (f *fakeAggregator) AggregateExpenses(_ context.Context, _ postgres.TenantScope, _, _ time.Time) (*report.ExpenseAggregate, error) {
	agg := f.expenses
	return &agg, nil
}

func (f *fakeAggregator) SalesBreakdown(_ context.Context, _ postgres.TenantScope, _, _ time.Time) ([]report.SalesRow, error) {
	return f.sales, nil
}

func (f *fakeAggregator) PurchaseBreakdown(_ context.Context, _ postgres.TenantScope, _, _ time.Time) ([]report.PurchaseRow, error) {
	return f.purchases, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var (
	periodFrom = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	periodTo   = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
)

func TestBuildVATReport(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc := NewReportService(&fakeAggregator{
		invoices: report.InvoiceAggregate{
			InvoiceCount: 3,
			TotalIncome:  dec("100000"),
			OutputVAT:    dec("16000"),
		},
		expenses: report.ExpenseAggregate{
			ExpenseCount:   5,
			TotalExpenses:  dec("40000"),
			InputVAT:       dec("6400"),
			RecoverableVAT: dec("5000"),
		},
	}, zap.NewNop())

	r, err := svc.BuildVATReport(ctx, scope, periodFrom, periodTo, false)
	require.NoError(t, err)

	// Only the recoverable slice of input VAT offsets output VAT.
	assert.True(t, dec("11000").Equal(r.VATPayable), "vat payable: %s", r.VATPayable)
	assert.True(t, dec("16").Equal(r.VATRate))
	assert.Empty(t, r.SalesBreakdown)
}

func TestBuildVATReportCarryForwardCredit(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc := NewReportService(&fakeAggregator{
		invoices: report.InvoiceAggregate{OutputVAT: dec("1000")},
		expenses: report.ExpenseAggregate{RecoverableVAT: dec("2500")},
	}, zap.NewNop())

	r, err := svc.BuildVATReport(ctx, scope, periodFrom, periodTo, false)
	require.NoError(t, err)
	assert.True(t, dec("-1500").Equal(r.VATPayable))
}

func TestBuildVATReportInvalidPeriod(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")
	svc := NewReportService(&fakeAggregator{}, zap.NewNop())

	_, err := svc.BuildVATReport(ctx, scope, periodTo, periodFrom, false)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = svc.BuildVATReport(ctx, scope, time.Time{}, periodTo, false)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestBuildProfitReport(t *testing.T) {
	ctx := context.Background()
	scope := postgres.NewTenantScope("biz-1")

	svc := NewReportService(&fakeAggregator{
		invoices: report.InvoiceAggregate{TotalIncome: dec("80000.50")},
		expenses: report.ExpenseAggregate{TotalExpenses: dec("30000.25")},
	}, zap.NewNop())

	r, err := svc.BuildProfitReport(ctx, scope, periodFrom, periodTo, false)
	require.NoError(t, err)
	assert.True(t, dec("50000.25").Equal(r.NetProfit))
}

func TestWriteVATReportCSV(t *testing.T) {
	r := &report.VATReport{
		Period:     report.Period{StartDate: periodFrom, EndDate: periodTo},
		OutputVAT:  report.InvoiceAggregate{OutputVAT: dec("16000")},
		InputVAT:   report.ExpenseAggregate{RecoverableVAT: dec("5000")},
		VATPayable: dec("11000"),
		VATRate:    dec("16"),
		SalesBreakdown: []report.SalesRow{
			{
				InvoiceNumber: "INV-2025-001",
				CustomerName:  "Mama Mboga Ltd",
				InvoiceDate:   periodFrom,
				Subtotal:      dec("100000"),
				VATAmount:     dec("16000"),
				Total:         dec("116000"),
				Status:        "PAID",
			},
		},
		PurchaseBreakdown: []report.PurchaseRow{
			{
				Date:           periodFrom,
				Category:       "utilities",
				Description:    "Electricity",
				Amount:         dec("31250"),
				VATAmount:      dec("5000"),
				VATRecoverable: true,
				TotalAmount:    dec("36250"),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVATReportCSV(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "INV-2025-001,Mama Mboga Ltd,2025-06-01,100000.00,16000.00,116000.00")
	assert.Contains(t, out, "2025-06-01,utilities,Electricity,31250.00,5000.00,true")
	assert.Contains(t, out, "VAT Payable,11000.00")

	// Every record must stay parseable.
	reader := csv.NewReader(strings.NewReader(out))
	reader.FieldsPerRecord = -1
	_, err := reader.ReadAll()
	assert.NoError(t, err)
}

func TestWriteProfitReportCSV(t *testing.T) {
	r := &report.ProfitReport{
		Period:        report.Period{StartDate: periodFrom, EndDate: periodTo},
		TotalIncome:   dec("80000"),
		TotalExpenses: dec("30000"),
		NetProfit:     dec("50000"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProfitReportCSV(&buf, r))
	assert.Contains(t, buf.String(), "Net Profit,50000.00")
}
