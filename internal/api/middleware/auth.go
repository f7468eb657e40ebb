package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marcosaureliofarias/convite-aniversario/pkg/jwt"
	"github.com/marcosaureliofarias/convite-aniversario/pkg/response"
)

// Context keys set by JWTAuth
const (
	ContextKeyUsername    = "username"
	ContextKeyTokenID     = "token_id"
	ContextKeyTokenExpiry = "token_exp"
)

// TokenChecker reports revoked tokens
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth admin authentication middleware.
// Extracts and verifies the access token from Authorization: Bearer <token>.
// checker may be nil; a failing checker lets the request through.
func JWTAuth(jwtMgr *jwt.Manager, checker TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeUnauthorized, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthorized, "token invalid or expired")
			c.Abort()
			return
		}

		if checker != nil {
			revoked, err := checker.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, response.CodeUnauthorized, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextKeyTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
