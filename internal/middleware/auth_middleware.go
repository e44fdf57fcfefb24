package middleware

import (
	"context"
	"net/http"
	"strings"

	"spa-portal/internal/domain"
	"spa-portal/internal/shared/apperror"
	"spa-portal/internal/shared/contextutil"
	"spa-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const principalContextKey = "session_principal"

// SessionResolver validates an access token and returns the current
// principal. Resolution happens on every request so directory changes apply
// without a new login.
type SessionResolver interface {
	ResolveSession(ctx context.Context, tokenString string) (domain.Principal, error)
}

// AuthMiddleware extracts the access token from the Authorization header or
// the access_token cookie and attaches the resolved principal to the request.
func AuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			c.Abort()
			return
		}

		principal, err := resolver.ResolveSession(c.Request.Context(), tokenString)
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Set(principalContextKey, principal)
		c.Set("user_id", principal.UID)

		ctx := contextutil.WithUserID(c.Request.Context(), principal.UID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetPrincipal returns the principal set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := v.(domain.Principal)
	return principal, ok
}

// SetPrincipal exists for handler tests that bypass AuthMiddleware.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_id", principal.UID)
}
