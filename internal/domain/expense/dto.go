// internal/domain/expense/dto.go
package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateExpenseInput struct {
	Date           time.Time       `json:"date" binding:"required"`
	Category       string          `json:"category" binding:"required"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	VATPercent     decimal.Decimal `json:"vat_percent"`
	VATRecoverable bool            `json:"vat_recoverable"`
	ReceiptURL     string          `json:"receipt_url"`
}

type UpdateExpenseInput struct {
	Date           *time.Time       `json:"date"`
	Category       *string          `json:"category"`
	Description    *string          `json:"description"`
	Amount         *decimal.Decimal `json:"amount"`
	VATPercent     *decimal.Decimal `json:"vat_percent"`
	VATRecoverable *bool            `json:"vat_recoverable"`
	ReceiptURL     *string          `json:"receipt_url"`
}

type ListFilters struct {
	Category string     `form:"category"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ListResponse struct {
	Expenses   []Expense `json:"expenses"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
