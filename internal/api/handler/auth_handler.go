package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/internal/service"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/response"
)

// AuthHandler admin authentication HTTP handlers
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login admin login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, response.CodeUnauthorized, "invalid username or password")
		case errors.Is(err, service.ErrAuthDisabled):
			response.BadRequest(c, response.CodeBadRequest, "admin authentication is disabled")
		default:
			_ = c.Error(err)
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Logout revokes the current token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiry, ok := tokenFromContext(c)
	if !ok {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, expiry); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "logout failed")
		return
	}

	response.Message(c, "logged out")
}
