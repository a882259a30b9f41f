package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is used when JOBBOARD_API_BASE_URL is unset.
const DefaultAPIBaseURL = "https://68972036250b078c204109ef.mockapi.io/api/v1"

const insecureTokenSecret = "jobboard-dev-secret"

type Config struct {
	APIBaseURL  string        `yaml:"api_base_url"`
	SessionPath string        `yaml:"session_path"`
	TokenSecret string        `yaml:"token_secret"`
	PageSize    int           `yaml:"page_size"`
	Gateway     GatewayConfig `yaml:"gateway"`
	RecordStore StoreConfig   `yaml:"record_store"`
}

// GatewayConfig tunes the HTTP client that talks to the record store.
// A zero Timeout means requests are never cut short by the client.
type GatewayConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// StoreConfig configures the local development record store server.
type StoreConfig struct {
	Addr         string        `yaml:"addr"`
	DatabasePath string        `yaml:"database_path"`
	APITimeout   time.Duration `yaml:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:  getEnv("JOBBOARD_API_BASE_URL", DefaultAPIBaseURL),
		SessionPath: getEnv("JOBBOARD_SESSION_PATH", "session.db"),
		TokenSecret: getEnv("JOBBOARD_TOKEN_SECRET", insecureTokenSecret),
		PageSize:    10,
		RecordStore: StoreConfig{
			Addr:         getEnv("RECORDSTORE_ADDR", ":8090"),
			DatabasePath: getEnv("RECORDSTORE_DATABASE_PATH", "recordstore.db"),
			APITimeout:   15 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills defaults for unset values and rejects unusable ones.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if c.SessionPath == "" {
		return errors.New("session_path is required")
	}
	if c.TokenSecret == insecureTokenSecret && os.Getenv("JOBBOARD_ENV") == "production" {
		return errors.New("token_secret must be changed outside development")
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.Gateway.Timeout < 0 {
		return errors.New("gateway.timeout must not be negative")
	}
	if c.Gateway.UserAgent == "" {
		c.Gateway.UserAgent = "jobboard-client"
	}
	if c.RecordStore.Addr == "" {
		c.RecordStore.Addr = ":8090"
	}
	if c.RecordStore.APITimeout <= 0 {
		c.RecordStore.APITimeout = 15 * time.Second
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
