package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RehanAnsari17/Qloooooooo/internal/auth"
	"github.com/RehanAnsari17/Qloooooooo/internal/common"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "auth_token"
)

// TokenDenylist reports whether a token was revoked by logout.
type TokenDenylist interface {
	IsTokenDenied(ctx context.Context, token string) (bool, error)
}

// AuthRequired validates the bearer token and stashes the user id (and the
// raw token, for logout) on the gin context. denylist may be nil.
func AuthRequired(secret string, denylist TokenDenylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing bearer token")
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		uid, err := auth.ParseJWT(token, secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid or expired token")
			c.Abort()
			return
		}

		if denylist != nil {
			denied, err := denylist.IsTokenDenied(c.Request.Context(), token)
			if err != nil {
				// redis being down should not lock everyone out
				log.Printf("auth: denylist check failed: %v", err)
			} else if denied {
				common.Fail(c, http.StatusUnauthorized, 40103, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set(UserIDKey, uid)
		c.Set(TokenKey, token)
		c.Next()
	}
}
