package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MinNotifyTimeoutSec = 1
	MaxNotifyTimeoutSec = 60

	NotifyModeInline = "inline"
	NotifyModeQueued = "queued"
)

type Config struct {
	HTTPPort       string   `yaml:"http_port"`
	DatabaseURL    string   `yaml:"database_url"`
	DBDriver       string   `yaml:"db_driver"`
	DBMaxOpenConns int      `yaml:"db_max_open_conns"`
	WebhookToken   string   `yaml:"webhook_bearer_token"`
	AdminToken     string   `yaml:"admin_bearer_token"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	CORSOrigins    []string `yaml:"cors_origins"`
	TrustProxy     bool     `yaml:"trust_proxy"`

	NotifyTimeoutSec  int    `yaml:"notify_timeout_sec"`
	NotifyPhonePrefix string `yaml:"notify_phone_prefix"`
	NotifyMode        string `yaml:"notify_mode"`

	RabbitMQURL     string `yaml:"rabbitmq_url"`
	RedisURL        string `yaml:"redis_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`

	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUser       string `yaml:"smtp_user"`
	SMTPPass       string `yaml:"smtp_pass"`
	AlertEmailTo   string `yaml:"alert_email_to"`
	AlertEmailFrom string `yaml:"alert_email_from"`

	ReconcileIntervalSec int `yaml:"reconcile_interval_sec"`
}

// Load lê .env (opcional), depois o YAML apontado por CONFIG_FILE (opcional)
// e por fim as variáveis de ambiente, que sempre vencem.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("erro ao interpretar %s: %w", path, err)
		}
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.WebhookToken = getEnv("WEBHOOK_BEARER_TOKEN", cfg.WebhookToken)
	cfg.AdminToken = getEnv("ADMIN_BEARER_TOKEN", cfg.AdminToken)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if origins, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(origins)
	}
	cfg.TrustProxy = getEnvBool("TRUST_PROXY", cfg.TrustProxy)
	cfg.NotifyTimeoutSec = getEnvInt("NOTIFY_TIMEOUT_SEC", cfg.NotifyTimeoutSec)
	cfg.NotifyPhonePrefix = getEnv("NOTIFY_PHONE_PREFIX", cfg.NotifyPhonePrefix)
	cfg.NotifyMode = getEnv("NOTIFY_MODE", cfg.NotifyMode)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MIN", cfg.RateLimitPerMin)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUser = getEnv("SMTP_USER", cfg.SMTPUser)
	cfg.SMTPPass = getEnv("SMTP_PASS", cfg.SMTPPass)
	cfg.AlertEmailTo = getEnv("ALERT_EMAIL_TO", cfg.AlertEmailTo)
	cfg.AlertEmailFrom = getEnv("ALERT_EMAIL_FROM", cfg.AlertEmailFrom)
	cfg.ReconcileIntervalSec = getEnvInt("RECONCILE_INTERVAL_SEC", cfg.ReconcileIntervalSec)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTPPort:             "8080",
		DBDriver:             "pgx",
		DBMaxOpenConns:       10,
		LogLevel:             "INFO",
		LogFormat:            "TEXT",
		CORSOrigins:          []string{"*"},
		NotifyTimeoutSec:     10,
		NotifyPhonePrefix:    "+65",
		NotifyMode:           NotifyModeInline,
		RateLimitPerMin:      60,
		SMTPPort:             587,
		ReconcileIntervalSec: 60,
	}
}

func (c *Config) normalize() error {
	switch c.DBDriver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER inválido: %q (use pgx ou postgres)", c.DBDriver)
	}

	c.NotifyMode = strings.ToLower(c.NotifyMode)
	if c.NotifyMode != NotifyModeInline && c.NotifyMode != NotifyModeQueued {
		return fmt.Errorf("NOTIFY_MODE inválido: %q (use inline ou queued)", c.NotifyMode)
	}

	if c.NotifyTimeoutSec > MaxNotifyTimeoutSec {
		slog.Warn("NOTIFY_TIMEOUT_SEC acima do limite, usando o máximo",
			"requested", c.NotifyTimeoutSec, "limit", MaxNotifyTimeoutSec)
		c.NotifyTimeoutSec = MaxNotifyTimeoutSec
	} else if c.NotifyTimeoutSec < MinNotifyTimeoutSec {
		c.NotifyTimeoutSec = MinNotifyTimeoutSec
	}

	if c.RateLimitPerMin < 0 {
		c.RateLimitPerMin = 0
	}
	if c.ReconcileIntervalSec <= 0 {
		c.ReconcileIntervalSec = 60
	}
	return nil
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSec) * time.Second
}

func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSec) * time.Second
}

// AlertsEnabled indica se há SMTP e destinatário para os alertas de falha.
func (c *Config) AlertsEnabled() bool {
	return c.SMTPHost != "" && c.AlertEmailTo != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
