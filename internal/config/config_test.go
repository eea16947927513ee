package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"DEFAULT_LOCALE", "SUPPORTED_LOCALES", "LOCALE_POLICY_PATH", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != DriverPostgres {
		t.Fatalf("driver = %q, want %q", cfg.DatabaseDriver, DriverPostgres)
	}
	if cfg.DatabaseURL == "" {
		t.Fatal("expected a local default DATABASE_URL")
	}
	if cfg.DefaultLocale != "en" || len(cfg.SupportedLocales) != 1 {
		t.Fatalf("locale defaults = %q/%v", cfg.DefaultLocale, cfg.SupportedLocales)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadSQLiteRequiresPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", DriverSQLite)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing SQLITE_PATH")
	}

	t.Setenv("SQLITE_PATH", "/tmp/translations.db")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != DriverSQLite {
		t.Fatalf("driver = %q, want sqlite", cfg.DatabaseDriver)
	}
}

func TestLoadRejectsMalformedDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "not-a-url")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed DATABASE_URL")
	}
}

func TestLoadSplitsSupportedLocales(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_LOCALE", "en")
	t.Setenv("SUPPORTED_LOCALES", "en, de ,fr,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.SupportedLocales) != 3 {
		t.Fatalf("supported = %v, want 3 entries", cfg.SupportedLocales)
	}
}
