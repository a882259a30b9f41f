package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("JOBBOARD_API_BASE_URL")
	_ = os.Unsetenv("JOBBOARD_SESSION_PATH")
	_ = os.Unsetenv("RECORDSTORE_ADDR")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.APIBaseURL != config.DefaultAPIBaseURL {
		t.Fatalf("unexpected APIBaseURL: got %q want %q", cfg.APIBaseURL, config.DefaultAPIBaseURL)
	}
	if cfg.SessionPath != "session.db" {
		t.Fatalf("unexpected SessionPath: got %q", cfg.SessionPath)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("unexpected PageSize: got %d", cfg.PageSize)
	}
	if cfg.Gateway.Timeout != 0 {
		t.Fatalf("gateway must not time out by default, got %v", cfg.Gateway.Timeout)
	}
	if cfg.RecordStore.Addr != ":8090" {
		t.Fatalf("unexpected RecordStore.Addr: got %q", cfg.RecordStore.Addr)
	}
}

func TestLoadConfig_EnvBaseURL(t *testing.T) {
	t.Setenv("JOBBOARD_API_BASE_URL", "http://localhost:9999/api")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:9999/api" {
		t.Fatalf("env base url ignored: %q", cfg.APIBaseURL)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("api_base_url: \"http://records.local/v1\"\nsession_path: \"test-session.db\"\npage_size: 25\ngateway:\n  timeout: \"3s\"\nrecord_store:\n  addr: \":9191\"\n  timeout: \"30s\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.APIBaseURL != "http://records.local/v1" {
		t.Fatalf("unexpected APIBaseURL: %q", cfg.APIBaseURL)
	}
	if cfg.SessionPath != "test-session.db" {
		t.Fatalf("unexpected SessionPath: %q", cfg.SessionPath)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("unexpected PageSize: %d", cfg.PageSize)
	}
	if cfg.Gateway.Timeout != 3*time.Second {
		t.Fatalf("unexpected Gateway.Timeout: %v", cfg.Gateway.Timeout)
	}
	if cfg.RecordStore.Addr != ":9191" || cfg.RecordStore.APITimeout != 30*time.Second {
		t.Fatalf("unexpected RecordStore: %#v", cfg.RecordStore)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &config.Config{SessionPath: "s.db", TokenSecret: "strong"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}
	if cfg.APIBaseURL != config.DefaultAPIBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.APIBaseURL)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("expected default page size, got %d", cfg.PageSize)
	}
	if cfg.Gateway.UserAgent == "" {
		t.Fatalf("expected user agent default")
	}
}

func TestValidate_BadBaseURL(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "not a url", SessionPath: "s.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to reject relative base url")
	}
}

func TestValidate_InsecureSecretInProduction(t *testing.T) {
	t.Setenv("JOBBOARD_ENV", "production")
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if os.Getenv("JOBBOARD_TOKEN_SECRET") != "" {
		t.Skip("token secret provided by environment")
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for default secret in production")
	}
}
