package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dailylesson-backend/internal/http/response"
)

// RequireBearer guards CMS routes with a shared token. An empty token
// leaves the routes open.
func RequireBearer(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(token)
	return func(c *gin.Context) {
		got := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid CMS token"))
			c.Abort()
			return
		}
		c.Next()
	}
}
