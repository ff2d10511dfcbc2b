package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GATEWAY_AUTH__JWT_SECRET", "test-secret")

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, "/v1", cfg.Server.BasePath)
	assert.Equal(t, 60, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Minute, cfg.Auth.CacheTTL)
	assert.Equal(t, 200, cfg.Auth.CacheMaxEntries)
	assert.Equal(t, DefaultProxyPrefixes, cfg.Proxy.Prefixes)
	assert.Equal(t, int64(10<<20), cfg.Proxy.MaxBodyBytes)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
auth:
  mode: remote
  verify_url: https://id.example.com/auth/v1
rate_limit:
  max_requests: 10
  window: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("GATEWAY_RATE_LIMIT__MAX_REQUESTS", "25")
	t.Setenv("GATEWAY_PROXY__PREFIXES", "crm, ads ,ai")
	t.Setenv("GATEWAY_PROXY__TARGET_URL", "http://ext.internal")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "remote", cfg.Auth.Mode)
	assert.Equal(t, 25, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"crm", "ads", "ai"}, cfg.Proxy.Prefixes)
	assert.Equal(t, "http://ext.internal", cfg.Proxy.TargetURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"jwt 模式缺少密钥", func(c *Config) {}, true},
		{"jwt 模式有密钥", func(c *Config) { c.Auth.JWTSecret = "s" }, false},
		{"remote 模式缺少地址", func(c *Config) { c.Auth.Mode = "remote" }, true},
		{"未知模式", func(c *Config) { c.Auth.Mode = "basic"; c.Auth.JWTSecret = "s" }, true},
		{"限流次数为 0", func(c *Config) { c.Auth.JWTSecret = "s"; c.RateLimit.MaxRequests = 0 }, true},
		{"日志级别非法", func(c *Config) { c.Auth.JWTSecret = "s"; c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "auth.jwt_secret", envTransformFunc("GATEWAY_AUTH__JWT_SECRET"))
	assert.Equal(t, "server.port", envTransformFunc("GATEWAY_SERVER__PORT"))
}
