package http

import (
	"net/http"
	"strings"

	"product-catalog/internal/api"
	"product-catalog/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	claimsContextKey = "authClaims"
	bearerPrefix     = "Bearer "
)

// The gate answers every failure with the same body so callers learn
// nothing about why a token was rejected.
const authFailureMessage = "authentication required"

type TokenVerifier interface {
	VerifyToken(raw string) (auth.Claims, error)
}

// RequireAuth verifies the bearer token and attaches the decoded claims
// to the request context before any handler runs.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			api.AbortError(c, http.StatusUnauthorized, authFailureMessage)
			return
		}

		claims, err := verifier.VerifyToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			api.AbortError(c, http.StatusUnauthorized, authFailureMessage)
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims the gate stored for this request.
func ClaimsFrom(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}
