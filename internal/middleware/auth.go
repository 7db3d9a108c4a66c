package middleware

import (
	"strconv"
	"strings"
	"subway_roulette_backend/internal/config"
	"subway_roulette_backend/internal/util"
	"subway_roulette_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err), zap.String("request_id", c.GetString(util.RequestIDKey)))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.UserContextKey, claims)
		c.Next()
	}
}

// RequireSelf 路径参数中的用户 ID 必须是当前登录用户
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			util.BadRequest(c, "invalid "+param)
			c.Abort()
			return
		}
		if uint(id) != user.UserID {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
