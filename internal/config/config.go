package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config crm2026（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Store   StoreConfig
	Advisor AdvisorConfig
	Auth    AuthConfig
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// StoreConfig view-model store 配置
type StoreConfig struct {
	// Mode: "synced" (Postgres authoritative + push refresh) or "local"
	// (in-memory collection persisted to the KV).
	Mode string
	// RefreshDebounce coalesces bursts of change events into one re-fetch.
	RefreshDebounce time.Duration
}

// AdvisorConfig 文本生成服务配置
type AdvisorConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AuthConfig 会话配置
type AuthConfig struct {
	SessionTTL time.Duration
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "crm2026")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Store.Mode = getEnv("STORE_MODE", "synced")
	cfg.Store.RefreshDebounce = parseDuration(getEnv("STORE_REFRESH_DEBOUNCE", "1s"), time.Second)

	cfg.Advisor.BaseURL = getEnv("ADVISOR_BASE_URL", "")
	cfg.Advisor.APIKey = getEnv("ADVISOR_API_KEY", "")
	cfg.Advisor.Model = getEnv("ADVISOR_MODEL", "gemini-2.0-flash")
	cfg.Advisor.Timeout = parseDuration(getEnv("ADVISOR_TIMEOUT", "30s"), 30*time.Second)

	cfg.Auth.SessionTTL = parseDuration(getEnv("AUTH_SESSION_TTL", "24h"), 24*time.Hour)

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
