// Package auth guards routes with bearer tokens
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unionhub/unionhub-api/internal/auth"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/response"
)

// ClaimsKey is the gin context key holding the verified *auth.Claims
const ClaimsKey = "auth_claims"

// TokenParser validates a raw bearer token
type TokenParser interface {
	ParseToken(raw string) (*auth.Claims, error)
}

// RequireRole rejects requests without a valid bearer token carrying one of roles.
// A nil parser disables the check, which is how development runs without a secret.
func RequireRole(parser TokenParser, roles ...string) gin.HandlerFunc {
	log := logger.HTTP()
	return func(c *gin.Context) {
		if parser == nil {
			c.Next()
			return
		}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := parser.ParseToken(raw)
		if err != nil {
			log.Warn("Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			response.AbortWithError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			response.AbortWithError(c, http.StatusForbidden, "insufficient role")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the claims stored by RequireRole
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
