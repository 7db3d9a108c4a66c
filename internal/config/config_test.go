package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: test
jwt:
  secret: short
database:
  host: db.local
  dbname: subway
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 100.0, cfg.Game.VerificationRadiusM)
	assert.Equal(t, 3*time.Hour, cfg.Game.TimeLimit())
	assert.Equal(t, time.Minute, cfg.Game.ExpirySweepInterval())
	assert.Equal(t, 20, cfg.RateLimit.VerifyMaxRequests)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
jwt:
  secret: from-file
  expire_hours: 1
game:
  time_limit_minutes: 90
`)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 90*time.Minute, cfg.Game.TimeLimit())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Mode: "release"},
			JWT:    JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Game: GameConfig{
				VerificationRadiusM: 100,
				TimeLimitMinutes:    180,
				ExpirySweepSeconds:  60,
			},
		}
	}

	assert.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"short secret in release": func(c *Config) { c.JWT.Secret = "short" },
		"zero radius":             func(c *Config) { c.Game.VerificationRadiusM = 0 },
		"zero time limit":         func(c *Config) { c.Game.TimeLimitMinutes = 0 },
		"zero sweep interval":     func(c *Config) { c.Game.ExpirySweepSeconds = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("short secret allowed outside release", func(t *testing.T) {
		c := valid()
		c.Server.Mode = "debug"
		c.JWT.Secret = "short"
		assert.NoError(t, c.Validate())
	})
}
