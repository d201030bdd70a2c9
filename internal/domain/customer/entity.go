// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"
)

type Customer struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	Name    string         `json:"name" db:"name"`
	Email   string         `json:"email" db:"email"`
	Phone   sql.NullString `json:"phone,omitempty" db:"phone"`
	Address sql.NullString `json:"address,omitempty" db:"address"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
