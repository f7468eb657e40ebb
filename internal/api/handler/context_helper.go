package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcosaureliofarias/convite-aniversario/internal/api/middleware"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/response"
)

// bindJSON decodes the body into obj. On failure it writes 413 for an
// oversized body or 400 otherwise and returns false; callers just return.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
			return false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// tokenFromContext returns the jti and expiry JWTAuth stored for the request
func tokenFromContext(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(middleware.ContextKeyTokenID)
	if jti == "" {
		return "", time.Time{}, false
	}
	exp, _ := c.Get(middleware.ContextKeyTokenExpiry)
	expiry, _ := exp.(time.Time)
	return jti, expiry, true
}
