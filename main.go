// @title Subway Roulette 后端 API
// @version 1.0
// @description 地铁轮盘游戏的后端服务：随机抽取车站、GPS 到站验证、统计、成就与排行榜。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"
	"path/filepath"
	"subway_roulette_backend/internal/app"
	"subway_roulette_backend/internal/config"
	"subway_roulette_backend/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const configDir = "configs"

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// .env 不存在时忽略，环境变量仍然生效
	_ = godotenv.Load()

	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移与种子数据写入，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seedFile := flag.String("seed", "", "从 xlsx 或 csv 文件导入车站（列：code,name,line,latitude,longitude）")
	flag.Parse()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	cfg.SeedFile = *seedFile

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	done := make(chan struct{})
	defer close(done)
	if err := application.WatchConfig(filepath.Join(configDir, "config.yaml"), done); err != nil {
		logger.Log.Warn("Config hot reload disabled", zap.Error(err))
	}

	application.Run()
}
