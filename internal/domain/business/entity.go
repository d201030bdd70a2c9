package business

import (
	"database/sql"
	"time"
)

// Business is the tenant of the system. One business = one tenant account,
// owned by exactly one user; every other row in the database is partitioned
// by the business id.
type Business struct {
	ID        string         `json:"id" db:"id"`
	OwnerID   string         `json:"owner_id" db:"owner_id"`
	Name      string         `json:"name" db:"name"`
	KRAPin    sql.NullString `json:"kra_pin,omitempty" db:"kra_pin"`
	VATNumber sql.NullString `json:"vat_number,omitempty" db:"vat_number"`
	Industry  sql.NullString `json:"industry,omitempty" db:"industry"`
	Phone     sql.NullString `json:"phone,omitempty" db:"phone"`
	Email     sql.NullString `json:"email,omitempty" db:"email"`
	Address   sql.NullString `json:"address,omitempty" db:"address"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
