// internal/service/customer/customer.go
package customer

import (
	"context"
	"database/sql"

	"hesabu-service/internal/domain/customer"
	"hesabu-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type CustomerService struct {
	customerRepo *postgres.CustomerRepository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *postgres.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *CustomerService) Create(ctx context.Context, scope postgres.TenantScope, input *customer.CreateCustomerInput) (*customer.Customer, error) {
	c := &customer.Customer{
		ID:      ulid.Make().String(),
		Name:    input.Name,
		Email:   input.Email,
		Phone:   nullString(input.Phone),
		Address: nullString(input.Address),
	}
	if err := s.customerRepo.Create(ctx, scope, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("customer_id", c.ID),
		zap.String("tenant_id", scope.TenantID()),
	)
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, scope postgres.TenantScope, id string) (*customer.Customer, error) {
	return s.customerRepo.FindByID(ctx, scope, id)
}

func (s *CustomerService) List(ctx context.Context, scope postgres.TenantScope, filters *customer.CustomerListFilters) ([]customer.Customer, int64, error) {
	return s.customerRepo.List(ctx, scope, filters)
}

func (s *CustomerService) Update(ctx context.Context, scope postgres.TenantScope, id string, input *customer.UpdateCustomerInput) (*customer.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Email != nil {
		c.Email = *input.Email
	}
	if input.Phone != nil {
		c.Phone = nullString(*input.Phone)
	}
	if input.Address != nil {
		c.Address = nullString(*input.Address)
	}

	if err := s.customerRepo.Update(ctx, scope, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, scope postgres.TenantScope, id string) error {
	return s.customerRepo.Delete(ctx, scope, id)
}
