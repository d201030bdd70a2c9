// internal/middleware/tenant_middleware.go
package middleware

import (
	"errors"
	"net/http"

	"hesabu-service/internal/pkg/response"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/gin-gonic/gin"
)

type TenantMiddleware struct {
	businessRepo *postgres.BusinessRepository
}

func NewTenantMiddleware(businessRepo *postgres.BusinessRepository) *TenantMiddleware {
	return &TenantMiddleware{businessRepo: businessRepo}
}

// RequireTenant resolves the authenticated user's business and stores its
// TenantScope in the context. Every tenant-owned route goes through here, so
// no handler can reach a repository without a scope. Must run after Auth.
func (m *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		b, err := m.businessRepo.FindByOwner(c.Request.Context(), userID)
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Error(c, http.StatusForbidden, "business profile not set up", nil)
			return
		}
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "failed to resolve business", nil)
			return
		}

		c.Set("tenant_scope", postgres.NewTenantScope(b.ID))
		c.Next()
	}
}

// GetTenantScope gets the resolved tenant scope from context
func GetTenantScope(c *gin.Context) (postgres.TenantScope, bool) {
	v, exists := c.Get("tenant_scope")
	if !exists {
		return postgres.TenantScope{}, false
	}
	scope, ok := v.(postgres.TenantScope)
	return scope, ok
}
