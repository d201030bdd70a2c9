// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"hesabu-service/internal/domain/user"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pkg/response"
	service "hesabu-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a user account and returns a token
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to register", err)
		return
	}

	response.Success(c, http.StatusCreated, "account created", result)
}

// Login verifies credentials and returns a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), c.ClientIP(), &req)
	if err != nil {
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logged in", result)
}

// Logout revokes the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), userID, jti); err != nil {
		response.FromError(c, "failed to log out", err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, "failed to fetch profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", u)
}
