// internal/handlers/expense/expense_handler.go
package expense

import (
	"net/http"

	"hesabu-service/internal/domain/expense"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pkg/response"
	service "hesabu-service/internal/service/expense"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
	}
}

// Create records an expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req expense.CreateExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.expenseService.Create(c.Request.Context(), scope, &req)
	if err != nil {
		response.FromError(c, "failed to record expense", err)
		return
	}

	response.Success(c, http.StatusCreated, "expense recorded", result)
}

// Get retrieves an expense by id
func (h *ExpenseHandler) Get(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	result, err := h.expenseService.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "expense not found", err)
		return
	}

	response.Success(c, http.StatusOK, "expense retrieved", result)
}

// List returns a page of expenses filtered by category and date range
func (h *ExpenseHandler) List(c *gin.Context) {
	var filters expense.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.expenseService.List(c.Request.Context(), scope, &filters)
	if err != nil {
		response.FromError(c, "failed to list expenses", err)
		return
	}

	response.Success(c, http.StatusOK, "expenses retrieved", result)
}

// Update patches an expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req expense.UpdateExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.expenseService.Update(c.Request.Context(), scope, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update expense", err)
		return
	}

	response.Success(c, http.StatusOK, "expense updated", result)
}

// Delete removes an expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	if err := h.expenseService.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.FromError(c, "failed to delete expense", err)
		return
	}

	response.Success(c, http.StatusOK, "expense deleted", nil)
}

// Categories returns the fixed expense category catalogue
func (h *ExpenseHandler) Categories(c *gin.Context) {
	response.Success(c, http.StatusOK, "categories retrieved", gin.H{
		"categories": h.expenseService.Categories(),
	})
}
