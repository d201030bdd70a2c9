// internal/service/report/report.go
package report

import (
	"context"
	"time"

	"hesabu-service/internal/domain/report"
	"hesabu-service/internal/pkg/money"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StandardVATRate is the Kenyan standard VAT rate applied to taxable
// supplies.
var StandardVATRate = decimal.NewFromInt(16)

// Aggregator is the read surface the report builders run on.
// *postgres.ReportRepository satisfies it; tests use an in-memory fake.
type Aggregator interface {
	AggregateInvoices(ctx context.Context, scope postgres.TenantScope, from, to time.Time) (*report.InvoiceAggregate, error)
	AggregateExpenses(ctx context.Context, scope postgres.TenantScope, from, to time.Time) (*report.ExpenseAggregate, error)
	SalesBreakdown(ctx context.Context, scope postgres.TenantScope, from, to time.Time) ([]report.SalesRow, error)
	PurchaseBreakdown(ctx context.Context, scope postgres.TenantScope, from, to time.Time) ([]report.PurchaseRow, error)
}

type ReportService struct {
	repo   Aggregator
	logger *zap.Logger
}

func NewReportService(repo Aggregator, logger *zap.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		logger: logger,
	}
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "invalid report period")
	}
	return nil
}

// BuildVATReport computes the VAT position for a period: output VAT charged
// on sales minus the recoverable slice of input VAT paid on purchases. A
// negative result is a carry-forward credit and is reported as-is.
func (s *ReportService) BuildVATReport(ctx context.Context, scope postgres.TenantScope, from, to time.Time, withBreakdown bool) (*report.VATReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	sales, err := s.repo.AggregateInvoices(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.AggregateExpenses(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}

	out := &report.VATReport{
		Period:     report.Period{StartDate: from, EndDate: to},
		OutputVAT:  *sales,
		InputVAT:   *purchases,
		VATPayable: money.Round2(sales.OutputVAT.Sub(purchases.RecoverableVAT)),
		VATRate:    StandardVATRate,
	}

	if withBreakdown {
		if out.SalesBreakdown, err = s.repo.SalesBreakdown(ctx, scope, from, to); err != nil {
			return nil, err
		}
		if out.PurchaseBreakdown, err = s.repo.PurchaseBreakdown(ctx, scope, from, to); err != nil {
			return nil, err
		}
	}

	s.logger.Info("vat report built",
		zap.String("tenant_id", scope.TenantID()),
		zap.Time("from", from), zap.Time("to", to),
		zap.String("vat_payable", out.VATPayable.String()),
	)
	return out, nil
}

// BuildProfitReport computes net profit for a period. Both sides are net of
// VAT: income is invoice subtotals, expenses are net amounts.
func (s *ReportService) BuildProfitReport(ctx context.Context, scope postgres.TenantScope, from, to time.Time, withBreakdown bool) (*report.ProfitReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	sales, err := s.repo.AggregateInvoices(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.AggregateExpenses(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}

	out := &report.ProfitReport{
		Period:        report.Period{StartDate: from, EndDate: to},
		TotalIncome:   sales.TotalIncome,
		TotalExpenses: purchases.TotalExpenses,
		NetProfit:     money.Round2(sales.TotalIncome.Sub(purchases.TotalExpenses)),
	}

	if withBreakdown {
		if out.SalesBreakdown, err = s.repo.SalesBreakdown(ctx, scope, from, to); err != nil {
			return nil, err
		}
		if out.PurchaseBreakdown, err = s.repo.PurchaseBreakdown(ctx, scope, from, to); err != nil {
			return nil, err
		}
	}
	return out, nil
}
