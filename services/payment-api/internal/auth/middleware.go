package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/novabank/payportal/pkg"
)

const (
	// Context keys set by Authenticate.
	CtxClaims = "auth_claims"
)

func abort(c *gin.Context, code pkg.ErrorCode) {
	c.AbortWithStatusJSON(code.Status, pkg.ErrorResponse{Code: code.Code, Message: code.Message})
}

// Authenticate requires a valid Bearer token and stores the parsed claims on
// the request context.
func Authenticate(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abort(c, pkg.ErrInvalidCredentialsCode)
			return
		}
		claims, err := tm.Parse(strings.TrimSpace(token))
		if err != nil {
			abort(c, pkg.ErrInvalidCredentialsCode)
			return
		}
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Runs after Authenticate.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil || claims.Role != role {
			abort(c, pkg.ErrForbiddenCode)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims set by Authenticate, or nil.
func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
