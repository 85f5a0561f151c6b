package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config é a configuração de processo. O que muda em runtime (webhook, pixels,
// tokens das plataformas) fica nas settings do store, não aqui.
type Config struct {
	HTTPPort        int
	ShutdownTimeout time.Duration

	DatabaseURL string
	DataPath    string

	AllowedOrigins []string

	JWTSecret         string
	EphemeralJWT      bool
	AdminUsername     string
	AdminPasswordHash string
	TokenTTL          time.Duration

	LogLevel  string
	LogFormat string

	RateLimitPerMinute int
	MonitorInterval    time.Duration

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string
}

type configFile struct {
	Server struct {
		Port                   int      `yaml:"port"`
		ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
		AllowedOrigins         []string `yaml:"allowed_origins"`
		LeadRateLimit          int      `yaml:"lead_rate_limit"`
	} `yaml:"server"`
	Storage struct {
		DatabaseURL string `yaml:"database_url"`
		DataPath    string `yaml:"data_path"`
	} `yaml:"storage"`
	Admin struct {
		Username      string `yaml:"username"`
		PasswordHash  string `yaml:"password_hash"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"admin"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Mail struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		User string `yaml:"user"`
		From string `yaml:"from"`
	} `yaml:"mail"`
}

// Load resolve na ordem: padrões -> arquivo YAML (opcional) -> variáveis de ambiente.
func Load(path string) (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		ShutdownTimeout:    15 * time.Second,
		DataPath:           "data/onbongo.json",
		AllowedOrigins:     []string{"http://localhost:5173", "https://b2b.onbongo.com.br"},
		AdminUsername:      "admin",
		TokenTTL:           24 * time.Hour,
		LogLevel:           "info",
		LogFormat:          "json",
		RateLimitPerMinute: 10,
		MonitorInterval:    time.Minute,
		MailPort:           587,
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applyFile(&cfg, raw); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("erro ao ler %s: %w", path, err)
	}

	cfg.HTTPPort = envInt("PORT", cfg.HTTPPort)
	cfg.ShutdownTimeout = time.Duration(envInt("SHUTDOWN_TIMEOUT_SECONDS", int(cfg.ShutdownTimeout.Seconds()))) * time.Second
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.DataPath = envOrDefault("DATA_PATH", cfg.DataPath)
	cfg.AllowedOrigins = envCSV("CORS_ORIGINS", cfg.AllowedOrigins)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminUsername = envOrDefault("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPasswordHash = envOrDefault("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.TokenTTL = time.Duration(envInt("ADMIN_TOKEN_TTL_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.RateLimitPerMinute = envInt("LEAD_RATE_LIMIT", cfg.RateLimitPerMinute)
	cfg.MonitorInterval = time.Duration(envInt("PENDING_MONITOR_SECONDS", int(cfg.MonitorInterval.Seconds()))) * time.Second
	cfg.MailHost = envOrDefault("MAIL_HOST", cfg.MailHost)
	cfg.MailPort = envInt("MAIL_PORT", cfg.MailPort)
	cfg.MailUser = envOrDefault("MAIL_USER", cfg.MailUser)
	cfg.MailPass = envOrDefault("MAIL_PASS", cfg.MailPass)
	cfg.MailFrom = envOrDefault("MAIL_FROM", cfg.MailFrom)

	if cfg.HTTPPort <= 0 {
		return Config{}, fmt.Errorf("porta HTTP inválida: %d", cfg.HTTPPort)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return Config{}, fmt.Errorf("LEAD_RATE_LIMIT deve ser positivo")
	}

	// Sem JWT_SECRET os tokens só valem até o próximo restart.
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString() + uuid.NewString()
		cfg.EphemeralJWT = true
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTPPort)
}

func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("erro ao interpretar arquivo de configuração: %w", err)
	}

	if f.Server.Port > 0 {
		cfg.HTTPPort = f.Server.Port
	}
	if f.Server.ShutdownTimeoutSeconds > 0 {
		cfg.ShutdownTimeout = time.Duration(f.Server.ShutdownTimeoutSeconds) * time.Second
	}
	if len(f.Server.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = f.Server.AllowedOrigins
	}
	if f.Server.LeadRateLimit > 0 {
		cfg.RateLimitPerMinute = f.Server.LeadRateLimit
	}
	if f.Storage.DatabaseURL != "" {
		cfg.DatabaseURL = f.Storage.DatabaseURL
	}
	if f.Storage.DataPath != "" {
		cfg.DataPath = f.Storage.DataPath
	}
	if f.Admin.Username != "" {
		cfg.AdminUsername = f.Admin.Username
	}
	if f.Admin.PasswordHash != "" {
		cfg.AdminPasswordHash = f.Admin.PasswordHash
	}
	if f.Admin.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(f.Admin.TokenTTLHours) * time.Hour
	}
	if f.Log.Level != "" {
		cfg.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	if f.Mail.Host != "" {
		cfg.MailHost = f.Mail.Host
	}
	if f.Mail.Port > 0 {
		cfg.MailPort = f.Mail.Port
	}
	if f.Mail.User != "" {
		cfg.MailUser = f.Mail.User
	}
	if f.Mail.From != "" {
		cfg.MailFrom = f.Mail.From
	}
	return nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
