// internal/domain/report/entity.go
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceAggregate summarizes sales over a period. Cancelled invoices are
// excluded from every aggregate.
type InvoiceAggregate struct {
	InvoiceCount int64           `json:"invoice_count"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	OutputVAT    decimal.Decimal `json:"output_vat"`
}

// ExpenseAggregate summarizes purchases over a period.
type ExpenseAggregate struct {
	ExpenseCount   int64           `json:"expense_count"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	InputVAT       decimal.Decimal `json:"input_vat"`
	RecoverableVAT decimal.Decimal `json:"recoverable_vat"`
}

type SalesRow struct {
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
}

type PurchaseRow struct {
	Date           time.Time       `json:"date"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	VATRecoverable bool            `json:"vat_recoverable"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// VATReport is the KRA-oriented VAT position for a period: output VAT from
// sales minus recoverable input VAT from purchases.
type VATReport struct {
	Period     Period           `json:"period"`
	OutputVAT  InvoiceAggregate `json:"output_vat"`
	InputVAT   ExpenseAggregate `json:"input_vat"`
	VATPayable decimal.Decimal  `json:"vat_payable"`
	VATRate    decimal.Decimal  `json:"vat_rate"`

	SalesBreakdown    []SalesRow    `json:"sales_breakdown,omitempty"`
	PurchaseBreakdown []PurchaseRow `json:"purchase_breakdown,omitempty"`
}

// ProfitReport is income minus expenses for a period, both net of VAT.
type ProfitReport struct {
	Period        Period          `json:"period"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`

	SalesBreakdown    []SalesRow    `json:"sales_breakdown,omitempty"`
	PurchaseBreakdown []PurchaseRow `json:"purchase_breakdown,omitempty"`
}
