package middleware

import (
	"net/http"
	"strings"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server/auth"
	"github.com/JzuvGTI/jzrestapi/internal/server/resp"
	"github.com/gin-gonic/gin"
)

const ContextUserKey = "user"

// Auth authenticates the panel session token and loads the user into the
// context. This is the account surface; proxied endpoints authenticate with
// an API key through the gate instead.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			resp.Error(c, http.StatusBadRequest, resp.ErrBadRequest)
			c.Abort()
			return
		}
		userID, err := auth.VerifyJWTToken(strings.TrimPrefix(token, "Bearer "))
		if err != nil {
			resp.Error(c, http.StatusUnauthorized, resp.ErrUnauthorized)
			c.Abort()
			return
		}
		user, err := op.UserGet(userID, c.Request.Context())
		if err != nil {
			resp.Error(c, http.StatusUnauthorized, resp.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireAdmin runs after Auth and rejects non-superadmins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user.Role != model.UserRoleSuperadmin {
			resp.Error(c, http.StatusForbidden, resp.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) model.User {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(model.User); ok {
			return user
		}
	}
	return model.User{}
}
