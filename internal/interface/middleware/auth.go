package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/response"
)

const CtxUsernameKey = "username"

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*helpers.Claims, error)
}

// BearerAuth validates the Authorization: Bearer header and sets the token
// subject under CtxUsernameKey.
func BearerAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil || claims.Subject == "" {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUsernameKey, claims.Subject)
		c.Next()
	}
}
