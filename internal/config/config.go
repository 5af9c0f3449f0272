// Package config loads the runtime configuration of homi-browse and
// homi-proxy from HOMI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Sternrassler/homi-client/pkg/filter"
)

// Config holds runtime configuration.
type Config struct {
	APIURL      string        `envconfig:"HOMI_API_URL" default:"http://localhost:8080/api"`
	PageSize    int           `envconfig:"HOMI_PAGE_SIZE" default:"12"`
	HTTPTimeout time.Duration `envconfig:"HOMI_HTTP_TIMEOUT" default:"30s"`
	MaxRetries  int           `envconfig:"HOMI_MAX_RETRIES" default:"0"`

	// RedisAddr enables the response cache and shared rate limit state.
	// Empty runs without Redis.
	RedisAddr string        `envconfig:"HOMI_REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"HOMI_CACHE_TTL" default:"2m"`

	// NATSURL enables publishing analytics events. Empty logs them only.
	NATSURL string `envconfig:"HOMI_NATS_URL"`

	LogLevel  string `envconfig:"HOMI_LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"HOMI_LOG_PRETTY" default:"false"`

	// SavedPath is the file holding saved jobs and wizard drafts. Empty
	// means <user config dir>/homi/storage.json.
	SavedPath string `envconfig:"HOMI_SAVED_PATH"`

	ProxyAddr string `envconfig:"HOMI_PROXY_ADDR" default:":8090"`

	// ProxyRate is the number of requests per minute allowed per client IP.
	ProxyRate int `envconfig:"HOMI_PROXY_RATE" default:"120"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.SavedPath == "" {
		cfg.SavedPath = defaultSavedPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges envconfig cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("HOMI_API_URL must be an absolute URL (got %q)", c.APIURL)
	}
	if c.PageSize < 1 || c.PageSize > filter.MaxLimit {
		return fmt.Errorf("HOMI_PAGE_SIZE must be between 1 and %d (got %d)", filter.MaxLimit, c.PageSize)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HOMI_HTTP_TIMEOUT must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("HOMI_MAX_RETRIES must be >= 0 (got %d)", c.MaxRetries)
	}
	if c.ProxyRate < 1 {
		return fmt.Errorf("HOMI_PROXY_RATE must be positive (got %d)", c.ProxyRate)
	}
	return nil
}

// Usage writes the supported variables with their defaults to w.
func Usage(w io.Writer) error {
	return envconfig.Usagef("", &Config{}, w, envconfig.DefaultTableFormat)
}

func defaultSavedPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "homi", "storage.json")
}
