package app

import (
	"subway_roulette_backend/docs"
	"subway_roulette_backend/internal/middleware"
	"subway_roulette_backend/pkg/monitoring"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config))
	{
		a.registerGameRoutes(authGroup, c)
		a.registerUserRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerGameRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)

	// 线路与轮盘
	group.GET("/lines", c.station.ListLines)
	group.GET("/lines/:lineName/stations", c.station.ListStations)
	group.POST("/roulette/spin", c.station.Spin)

	// 挑战
	group.POST("/challenges", c.challenge.CreateChallenge)
	group.GET("/challenges/:challengeId", c.challenge.GetChallenge)
	group.POST("/challenges/:challengeId/fail", c.challenge.FailChallenge)
	group.POST("/challenges/:challengeId/cancel", c.challenge.CancelChallenge)

	// 到站验证（按用户限流）
	verifyWindow := time.Duration(a.Config.RateLimit.VerifyWindowSeconds) * time.Second
	group.POST("/visits",
		middleware.VerifyRateLimiter(a.Redis, a.Config.RateLimit.VerifyMaxRequests, verifyWindow),
		c.visit.VerifyVisit,
	)
	group.GET("/visits/:userId", middleware.RequireSelf("userId"), c.visit.GetUserVisits)

	// 成就目录与排行榜
	group.GET("/achievements", c.achievement.GetCatalog)
	group.GET("/leaderboard", c.leaderboard.GetLeaderboard)
	group.GET("/leaderboard/weekly", c.leaderboard.GetWeekly)
}

// registerUserRoutes /api/users/:userId/... 只允许访问自己的数据
func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	users := group.Group("/users/:userId")
	users.Use(middleware.RequireSelf("userId"))
	{
		users.GET("/challenges", c.challenge.ListChallenges)
		users.GET("/stats", c.stats.GetStats)
		users.GET("/line-stats", c.stats.GetLineStats)
		users.GET("/visited-stations", c.stats.GetVisitedStations)
		users.GET("/recent-activities", c.stats.GetRecentActivities)
		users.GET("/achievements", c.achievement.GetUserAchievements)
		users.GET("/achievements/progress", c.achievement.GetProgress)
		users.POST("/achievements/sync", c.achievement.SyncAchievements)
		users.GET("/rank", c.leaderboard.GetUserRank)
	}
}
