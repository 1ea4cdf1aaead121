package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Logs     LogsConfig     `toml:"logs"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Database DatabaseConfig `toml:"database"`
	Audit    AuditConfig    `toml:"audit"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// LogsConfig содержит настройки логирования
type LogsConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error fatal"`
	File  string `toml:"file"` // пустая строка: только stderr
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" validate:"min=1,max=65535"`
	ReadTimeout     int `toml:"read_timeout" validate:"min=1"`
	WriteTimeout    int `toml:"write_timeout" validate:"min=1"`
	IdleTimeout     int `toml:"idle_timeout" validate:"min=1"`
	ShutdownTimeout int `toml:"shutdown_timeout" validate:"min=1"`
}

// AuthConfig соли для вычисления токенов
type AuthConfig struct {
	Salt      string `toml:"salt" validate:"required"`
	AdminSalt string `toml:"admin_salt" validate:"required"`
}

// RedisConfig настройки хранилища интересов и кэша скоринга
type RedisConfig struct {
	Addr         string `toml:"addr" validate:"required,hostname_port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db" validate:"min=0"`
	DialTimeout  int    `toml:"dial_timeout_ms" validate:"min=1"`
	ReadTimeout  int    `toml:"read_timeout_ms" validate:"min=1"`
	WriteTimeout int    `toml:"write_timeout_ms" validate:"min=1"`
	MaxRetry     int    `toml:"max_retry" validate:"min=1,max=10"`
	RetryDelay   int    `toml:"retry_delay_ms" validate:"min=0"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL для аудита
type DatabaseConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host" validate:"required_if=Enabled true"`
	Port            int    `toml:"port" validate:"min=0,max=65535"`
	User            string `toml:"user" validate:"required_if=Enabled true"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname" validate:"required_if=Enabled true"`
	SSLMode         string `toml:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `toml:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `toml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" validate:"min=1"`
}

// AuditConfig настройки буфера и сброса аудит-записей
type AuditConfig struct {
	BufferSize    int `toml:"buffer_size" validate:"min=1"`
	FlushInterval int `toml:"flush_interval" validate:"min=1"` // в секундах
	BatchSize     int `toml:"batch_size" validate:"min=1"`
	RetentionDays int `toml:"retention_days" validate:"min=0"` // 0: не удалять
}

// MetricsConfig содержит настройки метрик Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path" validate:"startswith=/"`
	ServiceName string `toml:"service_name" validate:"required"`
}

// DSN формирует строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(r.DialTimeout) * time.Millisecond
}

func (r RedisConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(r.ReadTimeout) * time.Millisecond
}

func (r RedisConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(r.WriteTimeout) * time.Millisecond
}

func (r RedisConfig) RetryDelayDuration() time.Duration {
	return time.Duration(r.RetryDelay) * time.Millisecond
}

// Retention срок хранения аудит-записей, 0 если очистка выключена
func (a AuditConfig) Retention() time.Duration {
	return time.Duration(a.RetentionDays) * 24 * time.Hour
}

// Load загружает конфигурацию из TOML файла с поддержкой переменных окружения
// Пустой path означает конфигурацию только из окружения и значений по умолчанию
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config: %w", err)
		}
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// overrideFromEnv переопределяет значения из переменных окружения
func overrideFromEnv(cfg *Config) {
	// Server
	setInt("HTTP_PORT", &cfg.Server.HTTPPort)

	// Logs
	setString("LOG_LEVEL", &cfg.Logs.Level)
	setString("LOG_FILE", &cfg.Logs.File)

	// Auth
	setString("AUTH_SALT", &cfg.Auth.Salt)
	setString("AUTH_ADMIN_SALT", &cfg.Auth.AdminSalt)

	// Redis
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("REDIS_DB", &cfg.Redis.DB)
	setInt("REDIS_MAX_RETRY", &cfg.Redis.MaxRetry)

	// Database
	setBool("DB_ENABLED", &cfg.Database.Enabled)
	setString("DB_HOST", &cfg.Database.Host)
	setInt("DB_PORT", &cfg.Database.Port)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.DBName)
	setString("DB_SSLMODE", &cfg.Database.SSLMode)

	// Audit
	setInt("AUDIT_BUFFER_SIZE", &cfg.Audit.BufferSize)
	setInt("AUDIT_FLUSH_INTERVAL", &cfg.Audit.FlushInterval)
	setInt("AUDIT_BATCH_SIZE", &cfg.Audit.BatchSize)
	setInt("AUDIT_RETENTION_DAYS", &cfg.Audit.RetentionDays)

	// Metrics
	setBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("METRICS_PATH", &cfg.Metrics.Path)
	setString("METRICS_SERVICE_NAME", &cfg.Metrics.ServiceName)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// applyDefaults заполняет незаданные значения
func applyDefaults(cfg *Config) {
	// Logs
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}

	// Server
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	// Auth
	if cfg.Auth.Salt == "" {
		cfg.Auth.Salt = "Otus"
	}
	if cfg.Auth.AdminSalt == "" {
		cfg.Auth.AdminSalt = "42"
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 1000
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 1000
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 1000
	}
	if cfg.Redis.MaxRetry == 0 {
		cfg.Redis.MaxRetry = 3
	}
	if cfg.Redis.RetryDelay == 0 {
		cfg.Redis.RetryDelay = 100
	}

	// Database
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300 // 5 minutes
	}

	// Audit
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = 10000
	}
	if cfg.Audit.FlushInterval == 0 {
		cfg.Audit.FlushInterval = 5
	}
	if cfg.Audit.BatchSize == 0 {
		cfg.Audit.BatchSize = 500
	}

	// Metrics
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "scoringapi"
	}
}

// validate проверяет корректность конфигурации по тегам validate
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.Audit.BatchSize > cfg.Audit.BufferSize {
		return fmt.Errorf("audit batch_size (%d) must not exceed buffer_size (%d)",
			cfg.Audit.BatchSize, cfg.Audit.BufferSize)
	}

	return nil
}
