// internal/domain/payment/dto.go
package payment

import "github.com/shopspring/decimal"

type InitiateMpesaInput struct {
	InvoiceID   string          `json:"invoice_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PhoneNumber string          `json:"phone_number" binding:"required"`
}

type RecordManualInput struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference"`
}
