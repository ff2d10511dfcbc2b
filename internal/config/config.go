package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ==================== 配置结构 ====================

// Config 网关配置
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Proxy     ProxyConfig     `koanf:"proxy"`
	Logging   LoggingConfig   `koanf:"logging"`
	Tasks     TaskConfig      `koanf:"tasks"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	BasePath        string        `koanf:"base_path" validate:"required,startswith=/"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
	Mode            string        `koanf:"mode" validate:"oneof=debug release test"`
}

// DatabaseConfig 数据库
type DatabaseConfig struct {
	DSN          string        `koanf:"dsn" validate:"required"`
	MaxIdleConns int           `koanf:"max_idle_conns" validate:"min=0"`
	MaxOpenConns int           `koanf:"max_open_conns" validate:"min=1"`
	ConnMaxLife  time.Duration `koanf:"conn_max_life"`
	AutoMigrate  bool          `koanf:"auto_migrate"`
}

// AuthConfig 身份校验
// Mode=jwt 使用共享密钥本地校验；Mode=remote 调用身份服务
type AuthConfig struct {
	Mode            string        `koanf:"mode" validate:"oneof=jwt remote"`
	JWTSecret       string        `koanf:"jwt_secret"`
	JWTIssuer       string        `koanf:"jwt_issuer"`
	VerifyURL       string        `koanf:"verify_url"`
	APIKey          string        `koanf:"api_key"`
	VerifyTimeout   time.Duration `koanf:"verify_timeout" validate:"min=0"`
	CacheTTL        time.Duration `koanf:"cache_ttl" validate:"min=1s"`
	CacheMaxEntries int           `koanf:"cache_max_entries" validate:"min=1"`
}

// RateLimitConfig 固定窗口限流
type RateLimitConfig struct {
	MaxRequests int           `koanf:"max_requests" validate:"min=1"`
	Window      time.Duration `koanf:"window" validate:"min=1s"`
}

// ProxyConfig 二级服务转发
type ProxyConfig struct {
	TargetURL        string        `koanf:"target_url"`
	Prefixes         []string      `koanf:"prefixes"`
	Timeout          time.Duration `koanf:"timeout" validate:"min=0"`
	BreakerFailures  uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerOpenDelay time.Duration `koanf:"breaker_open_delay"`
	MaxBodyBytes     int64         `koanf:"max_body_bytes" validate:"min=1"`
}

// LoggingConfig 日志
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TaskConfig 后台任务
type TaskConfig struct {
	JobMetricsEnabled bool   `koanf:"job_metrics_enabled"`
	JobMetricsSpec    string `koanf:"job_metrics_spec"`
}

// ==================== 默认值 ====================

// DefaultProxyPrefixes 转发到二级服务的一级路径
var DefaultProxyPrefixes = []string{
	"automation", "marketing", "ads", "crm", "finance", "monetization", "ai",
	"bi", "analytics", "promotions", "conversion", "behavior", "intelligence",
}

// Default 默认配置，先于配置文件和环境变量加载
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			BasePath:        "/v1",
			ShutdownTimeout: 30 * time.Second,
			Mode:            "release",
		},
		Database: DatabaseConfig{
			DSN:          "host=localhost user=postgres password=postgres dbname=catalog port=5432 sslmode=disable",
			MaxIdleConns: 10,
			MaxOpenConns: 100,
			ConnMaxLife:  time.Hour,
			AutoMigrate:  true,
		},
		Auth: AuthConfig{
			Mode:            "jwt",
			JWTIssuer:       "catalog-gateway",
			VerifyTimeout:   5 * time.Second,
			CacheTTL:        5 * time.Minute,
			CacheMaxEntries: 200,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 60,
			Window:      60 * time.Second,
		},
		Proxy: ProxyConfig{
			Prefixes:         append([]string(nil), DefaultProxyPrefixes...),
			Timeout:          30 * time.Second,
			BreakerFailures:  5,
			BreakerOpenDelay: 30 * time.Second,
			MaxBodyBytes:     10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tasks: TaskConfig{
			JobMetricsEnabled: true,
			JobMetricsSpec:    "*/30 * * * * *",
		},
	}
}

// ==================== 校验 ====================

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Mode {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required when auth.mode=jwt")
		}
	case "remote":
		if c.Auth.VerifyURL == "" {
			return fmt.Errorf("auth.verify_url is required when auth.mode=remote")
		}
	}
	return nil
}
