package cfg

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MODE", "RSS_URL", "SPREADSHEET_ID", "CREDENTIALS_MODE", "GOOGLE_CREDENTIALS",
		"TOKEN_FILE", "CLIENT_SECRETS_FILE", "DB_PATH", "FEEDS_DIR", "PORT", "API_ACCESS_KEY",
		"FETCH_TIMEOUT", "SINK_TIMEOUT", "SUCCESS_INTERVAL", "ERROR_INTERVAL", "SEED_FROM_SINK",
		"LOG_CAPACITY", "USER_AGENT", "TZ", "DEBUG", "HEADLESS",
	} {
		// Setenv registers the restore, Unsetenv keeps go-flags from reading empty values
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Mode != ModeStandalone {
		t.Errorf("Expected mode '%s', got '%s'", ModeStandalone, cfg.Mode)
	}
	if cfg.CredentialsMode != CredentialsInteractive {
		t.Errorf("Expected credentials mode '%s', got '%s'", CredentialsInteractive, cfg.CredentialsMode)
	}
	if cfg.SuccessInterval != 300*time.Second {
		t.Errorf("Expected success interval 300s, got %v", cfg.SuccessInterval)
	}
	if cfg.ErrorInterval != 60*time.Second {
		t.Errorf("Expected error interval 60s, got %v", cfg.ErrorInterval)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %v", cfg.FetchTimeout)
	}
	if cfg.TokenFile != "token.json" {
		t.Errorf("Expected token file 'token.json', got '%s'", cfg.TokenFile)
	}
	if cfg.LogCapacity != 500 {
		t.Errorf("Expected log capacity 500, got %d", cfg.LogCapacity)
	}
	if cfg.SeedFromSink {
		t.Error("Expected sink seeding to be disabled by default")
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("RSS_URL", "https://example.com/feed.xml")
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("CREDENTIALS_MODE", "environment")
	t.Setenv("SUCCESS_INTERVAL", "120")

	cfg, err := LoadArgs([]string{"--mode", "server", "--seed-from-sink"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.RSSURL != "https://example.com/feed.xml" {
		t.Errorf("Expected RSS URL from environment, got '%s'", cfg.RSSURL)
	}
	if cfg.SpreadsheetID != "sheet-123" {
		t.Errorf("Expected spreadsheet ID 'sheet-123', got '%s'", cfg.SpreadsheetID)
	}
	if cfg.CredentialsMode != CredentialsEnvironment {
		t.Errorf("Expected credentials mode '%s', got '%s'", CredentialsEnvironment, cfg.CredentialsMode)
	}
	if cfg.Mode != ModeServer {
		t.Errorf("Expected mode '%s', got '%s'", ModeServer, cfg.Mode)
	}
	if cfg.SuccessInterval != 120*time.Second {
		t.Errorf("Expected success interval 120s, got %v", cfg.SuccessInterval)
	}
	if !cfg.SeedFromSink {
		t.Error("Expected sink seeding to be enabled")
	}
}

func TestLoadArgsInvalidMode(t *testing.T) {
	clearEnv(t)

	if _, err := LoadArgs([]string{"--mode", "daemon"}); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestLoadArgsRejectsNonPositiveInterval(t *testing.T) {
	clearEnv(t)

	if _, err := LoadArgs([]string{"--error-interval", "0"}); err == nil {
		t.Error("Expected error for zero error interval")
	}
}
