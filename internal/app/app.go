package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"subway_roulette_backend/internal/config"
	"subway_roulette_backend/internal/controller"
	"subway_roulette_backend/internal/middleware"
	"subway_roulette_backend/internal/repository"
	"subway_roulette_backend/internal/seed"
	"subway_roulette_backend/internal/service"
	"subway_roulette_backend/pkg/configwatcher"
	"subway_roulette_backend/pkg/database"
	"subway_roulette_backend/pkg/logger"
	"subway_roulette_backend/pkg/monitoring"
	"subway_roulette_backend/pkg/security"
	"subway_roulette_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	allowlist       *security.OriginAllowlist
	scheduler       *service.ExpiryScheduler
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	station     *repository.StationRepository
	challenge   *repository.ChallengeRepository
	visit       *repository.VisitRepository
	stats       *repository.StatsRepository
	achievement *repository.AchievementRepository
	leaderboard *repository.LeaderboardRepository
}

type services struct {
	auth        *service.AuthService
	station     *service.StationService
	stats       *service.StatsService
	achievement *service.AchievementService
	challenge   *service.ChallengeService
	visit       *service.VisitService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth        *controller.AuthController
	station     *controller.StationController
	challenge   *controller.ChallengeController
	visit       *controller.VisitController
	stats       *controller.StatsController
	achievement *controller.AchievementController
	leaderboard *controller.LeaderboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		station:     repository.NewStationRepository(db),
		challenge:   repository.NewChallengeRepository(db),
		visit:       repository.NewVisitRepository(db),
		stats:       repository.NewStatsRepository(db),
		achievement: repository.NewAchievementRepository(db),
		leaderboard: repository.NewLeaderboardRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	settings := service.NewGameSettings(cfg.Game)
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.station = service.NewStationService(repos.station)
	s.stats = service.NewStatsService(db, repos.stats, repos.visit, repos.station, settings)
	s.achievement = service.NewAchievementService(db, repos.achievement, repos.stats, repos.station)
	s.challenge = service.NewChallengeService(
		db,
		repos.challenge,
		repos.visit,
		repos.station,
		s.stats,
		s.achievement,
		settings,
	)
	s.visit = service.NewVisitService(db, repos.challenge, repos.visit, repos.station, s.challenge, settings)
	s.leaderboard = service.NewLeaderboardService(repos.leaderboard, repos.stats, settings)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		station:     controller.NewStationController(s.station),
		challenge:   controller.NewChallengeController(s.challenge),
		visit:       controller.NewVisitController(s.visit),
		stats:       controller.NewStatsController(s.stats, s.challenge),
		achievement: controller.NewAchievementController(s.achievement),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		health:      controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(a.allowlist))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 && cfg.RateLimit.WindowMinutes > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 在已建立的数据库连接上装配仓储、服务与路由，不启动后台任务
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		allowlist: security.NewOriginAllowlist(cfg.CORS.AllowedOrigins),
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	// 配置热更新：日志级别与 CORS 白名单
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Server.Mode)
		app.allowlist.Replace(newCfg.CORS.AllowedOrigins)
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := seed.SeedIfEmpty(db); err != nil {
		logger.Log.Fatal("Failed to seed reference data", zap.Error(err))
	}

	if cfg.SeedFile != "" {
		result, err := seed.ImportStations(db, cfg.SeedFile)
		if err != nil {
			logger.Log.Fatal("Failed to import stations", zap.String("file", cfg.SeedFile), zap.Error(err))
		}
		logger.Log.Info("Stations imported",
			zap.String("file", cfg.SeedFile),
			zap.Int("processed", result.TotalProcessed),
			zap.Int("imported", result.Imported),
			zap.Int("lines_created", result.LinesCreated),
			zap.Int("skipped", result.Skipped),
			zap.Strings("errors", result.Errors),
		)
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.startBackgroundTasks(cfg)

	return app
}

func (a *App) startBackgroundTasks(cfg *config.Config) {
	scheduler, err := service.NewExpiryScheduler(a.services.challenge, cfg.Game.ExpirySweepInterval())
	if err == nil {
		err = scheduler.Start()
	}
	if err != nil {
		logger.Log.Fatal("Failed to start expiry scheduler", zap.Error(err))
	}
	a.scheduler = scheduler
}

// WatchConfig 监听配置文件变化并依次执行已注册的回调
func (a *App) WatchConfig(configFile string, done <-chan struct{}) error {
	return configwatcher.WatchConfig(configFile, func(newCfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
	}, done)
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			logger.Log.Error("Failed to stop expiry scheduler", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
