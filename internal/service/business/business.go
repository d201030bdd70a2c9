// internal/service/business/business.go
package business

import (
	"context"
	"database/sql"

	"hesabu-service/internal/domain/business"
	"hesabu-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type BusinessService struct {
	businessRepo *postgres.BusinessRepository
	logger       *zap.Logger
}

func NewBusinessService(businessRepo *postgres.BusinessRepository, logger *zap.Logger) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		logger:       logger,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create registers the owner's business. The repository's unique index on
// owner_id turns a second attempt into ErrConflict.
func (s *BusinessService) Create(ctx context.Context, ownerID string, input *business.CreateBusinessInput) (*business.Business, error) {
	b := &business.Business{
		ID:        ulid.Make().String(),
		OwnerID:   ownerID,
		Name:      input.Name,
		KRAPin:    nullString(input.KRAPin),
		VATNumber: nullString(input.VATNumber),
		Industry:  nullString(input.Industry),
		Phone:     nullString(input.Phone),
		Email:     nullString(input.Email),
		Address:   nullString(input.Address),
	}
	if err := s.businessRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("business created",
		zap.String("business_id", b.ID),
		zap.String("owner_id", ownerID),
	)
	return b, nil
}

// GetMine returns the business owned by the user.
func (s *BusinessService) GetMine(ctx context.Context, ownerID string) (*business.Business, error) {
	return s.businessRepo.FindByOwner(ctx, ownerID)
}

// Update patches the owner's business. Nil fields are left unchanged; empty
// strings clear the optional fields.
func (s *BusinessService) Update(ctx context.Context, ownerID string, input *business.UpdateBusinessInput) (*business.Business, error) {
	b, err := s.businessRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		b.Name = *input.Name
	}
	if input.KRAPin != nil {
		b.KRAPin = nullString(*input.KRAPin)
	}
	if input.VATNumber != nil {
		b.VATNumber = nullString(*input.VATNumber)
	}
	if input.Industry != nil {
		b.Industry = nullString(*input.Industry)
	}
	if input.Phone != nil {
		b.Phone = nullString(*input.Phone)
	}
	if input.Email != nil {
		b.Email = nullString(*input.Email)
	}
	if input.Address != nil {
		b.Address = nullString(*input.Address)
	}

	if err := s.businessRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
