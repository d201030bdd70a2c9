// internal/middleware/helpers.go
package middleware

import (
	"hesabu-service/internal/repository/postgres"

	"github.com/gin-gonic/gin"
)

// MustGetUserID gets the user id from context or panics
func MustGetUserID(c *gin.Context) string {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

// MustGetJTI gets JTI from context or panics
func MustGetJTI(c *gin.Context) string {
	jti, exists := GetJTI(c)
	if !exists {
		panic("jti not found in context")
	}
	return jti
}

// MustGetTenantScope gets the tenant scope from context or panics
func MustGetTenantScope(c *gin.Context) postgres.TenantScope {
	scope, exists := GetTenantScope(c)
	if !exists {
		panic("tenant_scope not found in context")
	}
	return scope
}
