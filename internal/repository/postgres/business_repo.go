// internal/repository/postgres/business_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"hesabu-service/internal/domain/business"
	"hesabu-service/internal/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BusinessRepository struct {
	db *pgxpool.Pool
}

func NewBusinessRepository(db *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{db: db}
}

const businessColumns = `id, owner_id, name, kra_pin, vat_number, industry, phone, email, address, created_at, updated_at`

func scanBusiness(row pgx.Row) (*business.Business, error) {
	var b business.Business
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.KRAPin, &b.VATNumber, &b.Industry,
		&b.Phone, &b.Email, &b.Address, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan business: %w", err)
	}
	return &b, nil
}

// Create inserts the business. The unique index on owner_id enforces
// one business per owner.
func (r *BusinessRepository) Create(ctx context.Context, b *business.Business) error {
	query := `
		INSERT INTO businesses (id, owner_id, name, kra_pin, vat_number, industry, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.OwnerID, b.Name, b.KRAPin, b.VATNumber, b.Industry,
		b.Phone, b.Email, b.Address,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

func (r *BusinessRepository) FindByOwner(ctx context.Context, ownerID string) (*business.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE owner_id = $1`, businessColumns)
	return scanBusiness(r.db.QueryRow(ctx, query, ownerID))
}

func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*business.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM businesses WHERE id = $1`, businessColumns)
	return scanBusiness(r.db.QueryRow(ctx, query, id))
}

func (r *BusinessRepository) Update(ctx context.Context, b *business.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, kra_pin = $2, vat_number = $3, industry = $4,
		    phone = $5, email = $6, address = $7, updated_at = NOW()
		WHERE id = $8 AND owner_id = $9
	`

	result, err := r.db.Exec(ctx, query,
		b.Name, b.KRAPin, b.VATNumber, b.Industry,
		b.Phone, b.Email, b.Address, b.ID, b.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
