package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxUserID is the gin context key holding the acting user's identity.
const CtxUserID = "user_id"

// identityHeader carries the acting user's id. The header is trusted as-is;
// verifying it is the concern of whatever sits in front of this service.
const identityHeader = "userId"

// RequireUser reads the user identity from the request header and aborts
// with 401 when it is missing. It is the single identity source for every
// products route.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(identityHeader))
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "missing userId header"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, uid)
		c.Next()
	}
}

// UserID extracts the acting user id from the gin context.
// It is set by RequireUser.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}
