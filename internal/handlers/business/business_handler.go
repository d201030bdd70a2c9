// internal/handlers/business/business_handler.go
package business

import (
	"net/http"

	"hesabu-service/internal/domain/business"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pkg/response"
	service "hesabu-service/internal/service/business"

	"github.com/gin-gonic/gin"
)

type BusinessHandler struct {
	businessService *service.BusinessService
}

func NewBusinessHandler(businessService *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
	}
}

// Create registers the owner's business profile
func (h *BusinessHandler) Create(c *gin.Context) {
	var req business.CreateBusinessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	b, err := h.businessService.Create(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create business", err)
		return
	}

	response.Success(c, http.StatusCreated, "business created", b)
}

// GetMine returns the authenticated owner's business profile
func (h *BusinessHandler) GetMine(c *gin.Context) {
	b, err := h.businessService.GetMine(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.FromError(c, "business not found", err)
		return
	}

	response.Success(c, http.StatusOK, "business retrieved", b)
}

// Update patches the owner's business profile
func (h *BusinessHandler) Update(c *gin.Context) {
	var req business.UpdateBusinessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	b, err := h.businessService.Update(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		response.FromError(c, "failed to update business", err)
		return
	}

	response.Success(c, http.StatusOK, "business updated", b)
}
