package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conectame/internal/service"
)

const accountIDKey = "account_id"

// SessionToken copies the session token from the cookie, or from a bearer
// Authorization header, into the request context.
func SessionToken(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}

		if token != "" {
			c.Request = c.Request.WithContext(service.WithSessionToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

type authenticator interface {
	RequireAuthenticated(ctx context.Context) (int64, error)
}

// RequireSession stops the chain unless the request carries a live session.
func RequireSession(auth authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := auth.RequireAuthenticated(c.Request.Context())
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
				return
			}
			AbortUnauthenticated(c)
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

// AbortUnauthenticated points the caller at /login: browsers are redirected,
// API clients get a 401 with the same Location header.
func AbortUnauthenticated(c *gin.Context) {
	c.Header("Location", "/login")
	if WantsHTML(c) {
		c.Abort()
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
}

func WantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}
