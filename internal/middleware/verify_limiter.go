package middleware

import (
	"fmt"
	"net/http"
	"subway_roulette_backend/internal/util"
	"subway_roulette_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// VerifyRateLimiter 基于 Redis 的按用户固定窗口限流，防止刷 GPS 验证。
// rdb 为 nil 或 Redis 出错时放行。
func VerifyRateLimiter(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if rdb == nil || user == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("subway:verify:%d", user.UserID)
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Log.Warn("verify rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Log.Warn("verify rate limiter expire failed", zap.Error(err))
			}
		}

		if count > int64(maxRequests) {
			util.Error(c, http.StatusTooManyRequests, "too many verification attempts")
			c.Abort()
			return
		}
		c.Next()
	}
}
