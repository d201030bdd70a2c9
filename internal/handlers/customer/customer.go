// internal/handlers/customer/customer.go
package customer

import (
	"net/http"

	"hesabu-service/internal/domain/customer"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pkg/response"
	service "hesabu-service/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create creates a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customer.CreateCustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.customerService.Create(c.Request.Context(), scope, &req)
	if err != nil {
		response.FromError(c, "failed to create customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "customer created", result)
}

// Get retrieves a customer by id
func (h *CustomerHandler) Get(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	result, err := h.customerService.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "customer not found", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// List returns a page of customers, optionally filtered by search term
func (h *CustomerHandler) List(c *gin.Context) {
	var filters customer.CustomerListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	customers, total, err := h.customerService.List(c.Request.Context(), scope, &filters)
	if err != nil {
		response.FromError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", gin.H{
		"customers": customers,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// Update patches a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	var req customer.UpdateCustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.customerService.Update(c.Request.Context(), scope, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer updated", result)
}

// Delete removes a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	if err := h.customerService.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.FromError(c, "failed to delete customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer deleted", nil)
}
