package recordstore

import "time"

// Config holds settings for the record store client.
type Config struct {
	// BaseURL is the collection root, e.g. https://host/api/v1
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout bounds a single request. Zero disables the client-side timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// UserAgent is sent with every request when set
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// DefaultConfig returns the configuration used when nothing is supplied.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://68972036250b078c204109ef.mockapi.io/api/v1",
		UserAgent: "jobboard-client",
	}
}
