package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server/resp"
	"github.com/JzuvGTI/jzrestapi/internal/utils/log"
	"github.com/JzuvGTI/jzrestapi/internal/utils/ratelimit"
	"github.com/gin-gonic/gin"
)

var adminLimiter = ratelimit.New(ratelimit.NewMemoryStore())

// AdminRateLimit throttles a mutating admin action per actor and scope.
// Runs after Auth.
func AdminRateLimit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)

		limit, err := op.SettingGetInt(model.SettingKeyAdminRateLimit)
		if err != nil || limit <= 0 {
			limit = 30
		}
		windowSec, err := op.SettingGetInt(model.SettingKeyAdminRateWindow)
		if err != nil || windowSec <= 0 {
			windowSec = 60
		}

		actor := strconv.FormatUint(uint64(user.ID), 10)
		ok, err := adminLimiter.Allow(actor, scope, limit, time.Duration(windowSec)*time.Second)
		if err != nil {
			log.Errorf("admin rate limiter error: %v", err)
			c.Next()
			return
		}
		if !ok {
			resp.Error(c, http.StatusTooManyRequests, "too many admin actions, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
