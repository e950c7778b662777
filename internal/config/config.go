package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

const (
	AuthModeCasdoor = "casdoor"
	AuthModeHeader  = "header"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	Admin   AdminConfig
	Casdoor CasdoorConfig

	// AuthMode selects how the caller address is resolved: casdoor or header
	AuthMode string

	// InsecureAdminLoginBypass lets the admin log in with id ADMIN and no password.
	// Never enable outside test deployments.
	InsecureAdminLoginBypass bool
}

// AdminConfig is the account written by the genesis ledger entry
type AdminConfig struct {
	Address      string
	ID           string
	Email        string
	PasswordHash string
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// LoadConfig reads .env (if present) and the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return loadFrom(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "registry.ledger")
	v.SetDefault("ADMIN_ADDRESS", "")
	v.SetDefault("ADMIN_ID", "ADMIN")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("AUTH_MODE", AuthModeCasdoor)
	v.SetDefault("CASDOOR_ENDPOINT", "")
	v.SetDefault("CASDOOR_CLIENT_ID", "")
	v.SetDefault("CASDOOR_CLIENT_SECRET", "")
	v.SetDefault("CASDOOR_CERT", "")
	v.SetDefault("CASDOOR_ORGANIZATION", "")
	v.SetDefault("CASDOOR_APPLICATION", "")
	v.SetDefault("INSECURE_ADMIN_LOGIN_BYPASS", false)

	v.AutomaticEnv()
	return v
}

func loadFrom(v *viper.Viper) (*Config, error) {
	level, err := parseLogLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         v.GetString("PORT"),
		Environment:  v.GetString("ENVIRONMENT"),
		LogLevel:     level,
		DatabaseURL:  v.GetString("DATABASE_URL"),
		RedisURL:     v.GetString("REDIS_URL"),
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),
		Admin: AdminConfig{
			Address:      v.GetString("ADMIN_ADDRESS"),
			ID:           v.GetString("ADMIN_ID"),
			Email:        v.GetString("ADMIN_EMAIL"),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     v.GetString("CASDOOR_ENDPOINT"),
			ClientID:     v.GetString("CASDOOR_CLIENT_ID"),
			ClientSecret: v.GetString("CASDOOR_CLIENT_SECRET"),
			Cert:         v.GetString("CASDOOR_CERT"),
			Organization: v.GetString("CASDOOR_ORGANIZATION"),
			Application:  v.GetString("CASDOOR_APPLICATION"),
		},
		AuthMode:                 strings.ToLower(v.GetString("AUTH_MODE")),
		InsecureAdminLoginBypass: v.GetBool("INSECURE_ADMIN_LOGIN_BYPASS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the service cannot start without
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if models.NormalizeAddress(c.Admin.Address).IsZero() {
		return fmt.Errorf("ADMIN_ADDRESS is required")
	}
	if c.Admin.PasswordHash != "" {
		if _, err := models.ParsePasswordHash(c.Admin.PasswordHash); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD_HASH: %w", err)
		}
	}
	switch c.AuthMode {
	case AuthModeCasdoor:
		if c.Casdoor.Endpoint == "" || c.Casdoor.ClientID == "" {
			return fmt.Errorf("CASDOOR_ENDPOINT and CASDOOR_CLIENT_ID are required when AUTH_MODE=casdoor")
		}
	case AuthModeHeader:
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
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
