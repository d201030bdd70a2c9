// internal/domain/expense/entity.go
package expense

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	Date        time.Time      `json:"date" db:"date"`
	Category    string         `json:"category" db:"category"`
	Description sql.NullString `json:"description,omitempty" db:"description"`

	// amount is the net amount; vat_amount and total_amount are derived
	// server-side from amount and vat_percent.
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	VATPercent  decimal.Decimal `json:"vat_percent" db:"vat_percent"`
	VATAmount   decimal.Decimal `json:"vat_amount" db:"vat_amount"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`

	VATRecoverable bool           `json:"vat_recoverable" db:"vat_recoverable"`
	ReceiptURL     sql.NullString `json:"receipt_url,omitempty" db:"receipt_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Category struct {
	Value          string `json:"value"`
	Label          string `json:"label"`
	VATRecoverable bool   `json:"vat_recoverable"`
}

// Categories is the fixed catalogue offered to the frontend, with default
// VAT-recoverable flags following KRA input-VAT rules of thumb.
var Categories = []Category{
	{Value: "meals", Label: "Meals & Entertainment", VATRecoverable: false},
	{Value: "transport", Label: "Transport & Travel", VATRecoverable: true},
	{Value: "utilities", Label: "Utilities", VATRecoverable: true},
	{Value: "office_supplies", Label: "Office Supplies", VATRecoverable: true},
	{Value: "software", Label: "Software & Subscriptions", VATRecoverable: true},
	{Value: "professional_services", Label: "Professional Services", VATRecoverable: true},
	{Value: "advertising", Label: "Advertising & Marketing", VATRecoverable: true},
	{Value: "other", Label: "Other", VATRecoverable: false},
}

// ValidCategory reports whether value names a known expense category.
func ValidCategory(value string) bool {
	for _, c := range Categories {
		if c.Value == value {
			return true
		}
	}
	return false
}
