// internal/domain/payment/entity.go
package payment

import (
	"database/sql"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Daraja only accepts Kenyan mobile numbers in international form,
// 2547XXXXXXXX, no plus sign.
var phonePattern = regexp.MustCompile(`^2547\d{8}$`)

// ValidPhoneNumber reports whether n is a phone number an STK push can be
// sent to.
func ValidPhoneNumber(n string) bool {
	return phonePattern.MatchString(n)
}

type Method string

const (
	MethodMpesa  Method = "MPESA"
	MethodManual Method = "MANUAL"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Payment is a single attempted payment against an invoice. The lifecycle is
// one-shot: PENDING moves to SUCCESS or FAILED exactly once and never back.
// A failed attempt requires a new payment; rows are never deleted.
type Payment struct {
	ID        string `json:"id" db:"id"`
	TenantID  string `json:"tenant_id" db:"tenant_id"`
	InvoiceID string `json:"invoice_id" db:"invoice_id"`

	Amount decimal.Decimal `json:"amount" db:"amount"`
	Method Method          `json:"method" db:"method"`
	Status Status          `json:"status" db:"status"`

	// MpesaReference carries the CheckoutRequestID issued at push time so the
	// asynchronous callback can be correlated back to this row; once the
	// payment succeeds it is replaced by the M-Pesa receipt number.
	MpesaReference sql.NullString `json:"mpesa_reference,omitempty" db:"mpesa_reference"`

	// RawPayload is the provider callback stored verbatim for audit.
	RawPayload []byte `json:"raw_mpesa_payload,omitempty" db:"raw_mpesa_payload"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
