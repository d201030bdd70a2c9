// internal/domain/invoice/dto.go
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	VATPercent  decimal.Decimal `json:"vat_percent"`
}

type CreateInvoiceInput struct {
	InvoiceNumber string            `json:"invoice_number" binding:"required,max=64"`
	CustomerID    string            `json:"customer_id" binding:"required"`
	InvoiceDate   time.Time         `json:"invoice_date" binding:"required"`
	DueDate       time.Time         `json:"due_date" binding:"required"`
	Items         []CreateItemInput `json:"items" binding:"required,min=1,dive"`
	Notes         string            `json:"notes"`
}

type UpdateStatusInput struct {
	Status Status `json:"status" binding:"required"`
}

type ListFilters struct {
	Status   *Status    `form:"status"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ListResponse struct {
	Invoices   []Invoice `json:"invoices"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
