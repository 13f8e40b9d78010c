package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/batting-order-system/pkg/jwt"
)

const (
	userIDKey  = "user_id"
	cookieName = "auth_token"
)

// Viewer resolves who is looking at the page. It never rejects a request:
// anonymous viewers simply get no user id. A bearer value that is not a
// valid session token is taken as the user id itself.
func Viewer(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearer(c.GetHeader("Authorization"))
		if credential == "" {
			credential, _ = c.Cookie(cookieName)
		}

		if credential != "" {
			userID := credential
			if tokens != nil {
				if claims, err := tokens.ValidateToken(credential); err == nil {
					userID = claims.UserID
				}
			}
			c.Set(userIDKey, userID)
		}

		c.Next()
	}
}

// ViewerID returns the id set by Viewer, or "" for anonymous requests.
func ViewerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// bearer extracts the second word of an Authorization header.
func bearer(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// RequireAdmin guards admin routes with a shared token. An empty token
// leaves the routes open.
func RequireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		given := c.GetHeader("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin token"})
			return
		}

		c.Next()
	}
}
