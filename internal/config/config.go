package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Game      GameConfig      `mapstructure:"game"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool   `mapstructure:"-"`
	MigrateOnly  bool   `mapstructure:"-"`
	SeedFile     string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests         int `mapstructure:"max_requests"`
	WindowMinutes       int `mapstructure:"window_minutes"`
	VerifyMaxRequests   int `mapstructure:"verify_max_requests"`
	VerifyWindowSeconds int `mapstructure:"verify_window_seconds"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool `mapstructure:"parse_time"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// GameConfig holds the rules of a roulette challenge.
type GameConfig struct {
	VerificationRadiusM float64 `mapstructure:"verification_radius_m"`
	TimeLimitMinutes    int     `mapstructure:"time_limit_minutes"`
	ScorePerCompletion  int     `mapstructure:"score_per_completion"`
	ExpirySweepSeconds  int     `mapstructure:"expiry_sweep_seconds"`
}

func (g GameConfig) TimeLimit() time.Duration {
	return time.Duration(g.TimeLimitMinutes) * time.Minute
}

func (g GameConfig) ExpirySweepInterval() time.Duration {
	return time.Duration(g.ExpirySweepSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("rate_limit.verify_max_requests", 20)
	v.SetDefault("rate_limit.verify_window_seconds", 60)
	v.SetDefault("game.verification_radius_m", 100)
	v.SetDefault("game.time_limit_minutes", 180)
	v.SetDefault("game.score_per_completion", 100)
	v.SetDefault("game.expiry_sweep_seconds", 60)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SUBWAY")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	if c.Game.VerificationRadiusM <= 0 {
		return fmt.Errorf("game.verification_radius_m must be positive, got %v", c.Game.VerificationRadiusM)
	}
	if c.Game.TimeLimitMinutes <= 0 {
		return fmt.Errorf("game.time_limit_minutes must be positive, got %d", c.Game.TimeLimitMinutes)
	}
	if c.Game.ExpirySweepSeconds <= 0 {
		return fmt.Errorf("game.expiry_sweep_seconds must be positive, got %d", c.Game.ExpirySweepSeconds)
	}
	return nil
}
