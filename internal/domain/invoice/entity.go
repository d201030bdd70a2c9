// internal/domain/invoice/entity.go
package invoice

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusUnpaid        Status = "UNPAID"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOverdue       Status = "OVERDUE"
	StatusCancelled     Status = "CANCELLED"
)

// manualTransitions lists the status changes a user may request directly.
// UNPAID, PARTIALLY_PAID and PAID are owned by the payment ledger and are
// never reachable through UpdateStatus.
var manualTransitions = map[Status][]Status{
	StatusDraft:   {StatusSent, StatusCancelled},
	StatusSent:    {StatusCancelled},
	StatusUnpaid:  {StatusCancelled},
	StatusOverdue: {StatusCancelled},
}

// CanTransition reports whether a manual move from one status to another is
// allowed. Same-status moves are rejected as no-ops.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	for _, next := range manualTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	CustomerID    string    `json:"customer_id" db:"customer_id"`
	InvoiceDate   time.Time `json:"invoice_date" db:"invoice_date"`
	DueDate       time.Time `json:"due_date" db:"due_date"`
	Status        Status    `json:"status" db:"status"`

	// Totals are always derived from the items, never client input. Balance
	// is owned by the payment ledger: total minus successful payments,
	// clamped at zero.
	Subtotal   decimal.Decimal `json:"subtotal" db:"subtotal"`
	VATTotal   decimal.Decimal `json:"vat_total" db:"vat_total"`
	GrandTotal decimal.Decimal `json:"grand_total" db:"grand_total"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`

	Notes     sql.NullString `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	SentAt    sql.NullTime   `json:"sent_at,omitempty" db:"sent_at"`
	PaidAt    sql.NullTime   `json:"paid_at,omitempty" db:"paid_at"`
}

type Item struct {
	ID        string `json:"id" db:"id"`
	InvoiceID string `json:"invoice_id" db:"invoice_id"`

	Description string          `json:"description" db:"description"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total" db:"line_total"`
	VATPercent  decimal.Decimal `json:"vat_percent" db:"vat_percent"`
	VATAmount   decimal.Decimal `json:"vat_amount" db:"vat_amount"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type WithItems struct {
	Invoice
	Items []Item `json:"items"`
}
