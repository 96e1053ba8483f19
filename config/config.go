package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"guesthouse-backend/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Port     string           `yaml:"port"`
	Database DatabaseConfig   `yaml:"database"`
	Auth     AuthConfig       `yaml:"auth"`
	CORS     []string         `yaml:"cors_origins"`
	LogLevel string           `yaml:"log_level"`
	Billing  BillingConfig    `yaml:"billing"`
	SMTP     utils.SMTPConfig `yaml:"smtp"`
	Seed     SeedConfig       `yaml:"seed"`
}

// DatabaseConfig contains database settings. URL wins over the discrete
// fields when set.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	JWTSecretKey  string `yaml:"jwt_secret_key"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type BillingConfig struct {
	ReminderDaysBefore int `yaml:"reminder_days_before"`
}

// SeedConfig names the admin created on an empty users table.
type SeedConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	AdminName     string `yaml:"admin_name"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Port: "8080",
		Database: DatabaseConfig{
			Driver:  "mysql",
			Host:    "127.0.0.1",
			Port:    "3306",
			User:    "root",
			Name:    "guesthouse_db",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			JWTSecretKey:  "change-me",
			TokenTTLHours: 24,
		},
		CORS:     []string{"*"},
		LogLevel: "warn",
		Billing:  BillingConfig{ReminderDaysBefore: 3},
		Seed:     SeedConfig{AdminName: "Admin User"},
	}
}

// Load reads .env (optional), then the YAML file at CONFIG_PATH (optional,
// default config.yaml), then lets environment variables override both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := LoadFile(utils.EnvOrDefault("CONFIG_PATH", "config.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a YAML file on top of the defaults. A
// missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = utils.EnvOrDefault("PORT", c.Port)

	c.Database.Driver = strings.ToLower(utils.EnvOrDefault("DB_DRIVER", c.Database.Driver))
	c.Database.URL = utils.EnvOrDefault("DATABASE_URL", c.Database.URL)
	c.Database.URL = utils.EnvOrDefault("MYSQL_URL", c.Database.URL)
	c.Database.Host = utils.EnvOrDefault("DB_HOST", c.Database.Host)
	c.Database.Port = utils.EnvOrDefault("DB_PORT", c.Database.Port)
	c.Database.User = utils.EnvOrDefault("DB_USER", c.Database.User)
	c.Database.Password = utils.EnvOrDefault("DB_PASS", c.Database.Password)
	c.Database.Name = utils.EnvOrDefault("DB_NAME", c.Database.Name)
	c.Database.SSLMode = utils.EnvOrDefault("DB_SSLMODE", c.Database.SSLMode)

	c.Auth.JWTSecretKey = utils.EnvOrDefault("JWT_SECRET_KEY", c.Auth.JWTSecretKey)
	c.Auth.TokenTTLHours = utils.EnvInt("JWT_TTL_HOURS", c.Auth.TokenTTLHours)

	if raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); raw != "" {
		c.CORS = ParseList(raw)
	}
	c.LogLevel = strings.ToLower(utils.EnvOrDefault("LOG_LEVEL", c.LogLevel))
	c.Billing.ReminderDaysBefore = utils.EnvInt("REMINDER_DAYS_BEFORE", c.Billing.ReminderDaysBefore)

	c.SMTP.Host = utils.EnvOrDefault("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = utils.EnvOrDefault("SMTP_PORT", c.SMTP.Port)
	c.SMTP.Username = utils.EnvOrDefault("SMTP_USERNAME", c.SMTP.Username)
	c.SMTP.Password = utils.EnvOrDefault("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.FromName = utils.EnvOrDefault("SMTP_FROM_NAME", c.SMTP.FromName)

	c.Seed.AdminEmail = utils.EnvOrDefault("SEED_ADMIN_EMAIL", c.Seed.AdminEmail)
	c.Seed.AdminPassword = utils.EnvOrDefault("SEED_ADMIN_PASSWORD", c.Seed.AdminPassword)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql or postgres)", c.Database.Driver)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	if c.Billing.ReminderDaysBefore < 0 {
		return fmt.Errorf("REMINDER_DAYS_BEFORE cannot be negative")
	}
	if c.Auth.JWTSecretKey == "change-me" {
		log.Println("⚠️  JWT_SECRET_KEY is not set; using the insecure default")
	}
	return nil
}

// ParseList splits a comma-separated list, dropping blanks. An empty result
// means "*".
func ParseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
