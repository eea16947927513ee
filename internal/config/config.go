package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Drivers accepted for DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DatabaseDriver   string
	DatabaseURL      string
	SQLitePath       string
	DefaultLocale    string
	SupportedLocales []string
	LocalePolicyPath string
	LogLevel         string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	// .env is optional: variables may come from the environment itself
	// (Docker, CI, etc.).
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver:   os.Getenv("DATABASE_DRIVER"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       os.Getenv("SQLITE_PATH"),
		DefaultLocale:    os.Getenv("DEFAULT_LOCALE"),
		SupportedLocales: splitList(os.Getenv("SUPPORTED_LOCALES")),
		LocalePolicyPath: os.Getenv("LOCALE_POLICY_PATH"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applies all the rules the rest of the subsystem relies on.
func (c *Config) validate() error {
	switch strings.TrimSpace(c.DatabaseDriver) {
	case "":
		c.DatabaseDriver = DriverPostgres
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}

	if c.DatabaseDriver == DriverPostgres {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			// Useful local default when DATABASE_URL is not provided.
			c.DatabaseURL = "postgres://localhost:5432/transtore?sslmode=disable"
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	}

	if c.DatabaseDriver == DriverSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("config: SQLITE_PATH is required with the sqlite driver")
	}

	if strings.TrimSpace(c.LocalePolicyPath) == "" {
		if strings.TrimSpace(c.DefaultLocale) == "" {
			c.DefaultLocale = "en"
		}
		if len(c.SupportedLocales) == 0 {
			c.SupportedLocales = []string{c.DefaultLocale}
		}
	}

	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}

	return nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
