package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-service/internal/security"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "token"

// RequireAuth validates the session cookie and injects the caller's id.
// A missing cookie is unauthenticated, an invalid or expired one forbidden.
func RequireAuth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Token is not valid"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid session cookie is
// present and otherwise leaves the request anonymous. Identity is resolved
// fully before any handler runs, so response branching never races the
// verification.
func OptionalAuth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if userID, err := tokens.Verify(token); err == nil {
				c.Set("userID", userID)
			}
		}
		c.Next()
	}
}
