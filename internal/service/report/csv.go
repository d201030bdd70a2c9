// internal/service/report/csv.go
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"hesabu-service/internal/domain/report"
)

const csvDateFormat = "2006-01-02"

// WriteVATReportCSV renders the VAT report as a KRA-filing-friendly CSV:
// a sales section, a purchases section and a summary block.
func WriteVATReportCSV(w io.Writer, r *report.VATReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"VAT Report", "", "", "", "", ""},
		{"Period", r.Period.StartDate.Format(csvDateFormat), "to", r.Period.EndDate.Format(csvDateFormat), "", ""},
		{""},
		{"SALES"},
		{"Invoice Number", "Customer", "Date", "Net Amount", "VAT", "Total"},
	}
	for _, row := range r.SalesBreakdown {
		records = append(records, []string{
			row.InvoiceNumber,
			row.CustomerName,
			row.InvoiceDate.Format(csvDateFormat),
			row.Subtotal.StringFixed(2),
			row.VATAmount.StringFixed(2),
			row.Total.StringFixed(2),
		})
	}

	records = append(records,
		[]string{""},
		[]string{"PURCHASES"},
		[]string{"Date", "Category", "Description", "Net Amount", "VAT", "Recoverable"},
	)
	for _, row := range r.PurchaseBreakdown {
		records = append(records, []string{
			row.Date.Format(csvDateFormat),
			row.Category,
			row.Description,
			row.Amount.StringFixed(2),
			row.VATAmount.StringFixed(2),
			fmt.Sprintf("%t", row.VATRecoverable),
		})
	}

	records = append(records,
		[]string{""},
		[]string{"SUMMARY"},
		[]string{"Output VAT", r.OutputVAT.OutputVAT.StringFixed(2)},
		[]string{"Recoverable Input VAT", r.InputVAT.RecoverableVAT.StringFixed(2)},
		[]string{"VAT Payable", r.VATPayable.StringFixed(2)},
	)

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write vat report csv: %w", err)
	}
	return nil
}

// WriteProfitReportCSV renders the profit report as CSV.
func WriteProfitReportCSV(w io.Writer, r *report.ProfitReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Profit Report"},
		{"Period", r.Period.StartDate.Format(csvDateFormat), "to", r.Period.EndDate.Format(csvDateFormat)},
		{""},
		{"Total Income", r.TotalIncome.StringFixed(2)},
		{"Total Expenses", r.TotalExpenses.StringFixed(2)},
		{"Net Profit", r.NetProfit.StringFixed(2)},
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write profit report csv: %w", err)
	}
	return nil
}
