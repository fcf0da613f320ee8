package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raysh454/hfdl/internal/cache"
	"github.com/raysh454/hfdl/internal/fetcher"
	"github.com/raysh454/hfdl/internal/mirror"
	"github.com/raysh454/hfdl/internal/webclient"
)

// Config is the runtime configuration shared by the CLI and the server.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string `yaml:"addr"`

	// DefaultDomain is the mirror used when a request names none.
	DefaultDomain string `yaml:"default_domain"`

	// TempDir holds generated scripts until shutdown. Empty means os.TempDir().
	TempDir string `yaml:"temp_dir"`

	Log       LogConfig        `yaml:"log"`
	WebClient webclient.Config `yaml:"webclient"`
	Fetcher   fetcher.Config   `yaml:"fetcher"`
	Cache     cache.Config     `yaml:"cache"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:    ":8000",
		DefaultDomain: mirror.DefaultDomain,
		WebClient:     webclient.DefaultConfig(),
		Fetcher:       fetcher.DefaultConfig(),
		Cache:         cache.DefaultConfig(),
	}
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrEmptyListenAddr
	}
	if c.Fetcher.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Fetcher.Retry.Wait < 0 {
		return ErrInvalidRetryWait
	}
	if c.Cache.TTL < 0 {
		return ErrInvalidCacheTTL
	}
	if b := strings.ToLower(string(c.WebClient.Client)); b != "" && !slices.Contains(webclient.ListBackends(), b) {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.WebClient.Client)
	}
	if _, err := mirror.NewTarget(c.DefaultDomain, "owner/name", ""); err != nil {
		return fmt.Errorf("invalid config: default domain: %w", err)
	}
	return nil
}
