package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/paygate-next/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Tenancy  TenancyConfig  `mapstructure:"tenancy"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release

	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 操作员令牌校验配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	MaxRetry    int            `mapstructure:"max_retry"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	SecretKey        string          `mapstructure:"secret_key"`         // 支付账户密钥加密主密钥
	OnboardRateLimit RateLimitConfig `mapstructure:"onboard_rate_limit"` // 按 子域名+IP 计数
	PaymentRateLimit RateLimitConfig `mapstructure:"payment_rate_limit"` // 按租户计数
}

// RateLimitConfig 固定窗口限流配置，任一值 <= 0 时关闭
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// TenancyConfig 多租户配置
type TenancyConfig struct {
	RouteCacheTTLSeconds int `mapstructure:"route_cache_ttl_seconds"`
}

// LedgerConfig 账本配置
type LedgerConfig struct {
	DefaultCurrency  string `mapstructure:"default_currency"`
	CaptureMode      string `mapstructure:"capture_mode"` // approve / decline
	WebhookTimeoutMS int    `mapstructure:"webhook_timeout_ms"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// configSearchPaths config.yml 的查找目录：工作目录、cmd/server 的上级、etc
var configSearchPaths = []string{".", "../", "./etc"}

// defaults 按配置段分组的默认值，键与 mapstructure 标签一致
var defaults = map[string]map[string]interface{}{
	"server": {"host": "0.0.0.0", "port": "8080", "mode": "debug", "shutdown_timeout_seconds": 10},
	"log": {
		"dir": "", "filename": "app.log",
		"max_size_mb": 100, "max_backups": 7, "max_age_days": 30, "compress": true,
	},
	"database": {
		"driver": "sqlite", "dsn": "./db/paygate.db",
		"pool.max_open_conns": 1, "pool.max_idle_conns": 1,
		"pool.conn_max_lifetime_seconds": 0, "pool.conn_max_idle_time_seconds": 0,
	},
	"jwt":   {"secret": "change-me-in-production", "expire_hours": 24},
	"redis": {"enabled": true, "host": "127.0.0.1", "port": 6379, "password": "", "db": 0, "prefix": "pg"},
	"queue": {
		"enabled": true, "host": "127.0.0.1", "port": 6379, "password": "", "db": 1,
		"concurrency": 10, "max_retry": 8,
		"queues": map[string]int{"critical": 6, "default": 3},
	},
	"cors": {"allowed_origins": []string{"*"}, "allow_credentials": true, "max_age": 600},
	"security": {
		"secret_key":                        "change-me-credential-key",
		"onboard_rate_limit.window_seconds": 3600,
		"onboard_rate_limit.max_requests":   5,
		"payment_rate_limit.window_seconds": 60,
		"payment_rate_limit.max_requests":   300,
	},
	"tenancy": {"route_cache_ttl_seconds": 60},
	"ledger":  {"default_currency": "USD", "capture_mode": "approve", "webhook_timeout_ms": 5000},
	"metrics": {"enabled": true, "path": "/metrics"},
}

// Load 读取 .env、config.yml 与环境变量（ledger.default_currency -> LEDGER_DEFAULT_CURRENCY），解析失败直接 panic
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debugw("dotenv_not_loaded", "error", err)
	}
	cfg, err := read(viper.New(), configSearchPaths)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

func read(v *viper.Viper, paths []string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	for section, values := range defaults {
		for key, value := range values {
			v.SetDefault(section+"."+key, value)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

// ShutdownTimeout 优雅停机等待时间
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Addr 监听地址 host:port
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) normalize() {
	c.Ledger.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.Ledger.DefaultCurrency))
	if c.Ledger.DefaultCurrency == "" {
		c.Ledger.DefaultCurrency = "USD"
	}
	c.Ledger.CaptureMode = strings.ToLower(strings.TrimSpace(c.Ledger.CaptureMode))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Tenancy.RouteCacheTTLSeconds < 0 {
		c.Tenancy.RouteCacheTTLSeconds = 0
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}
	if strings.TrimSpace(c.Metrics.Path) == "" {
		c.Metrics.Path = "/metrics"
	}
}
