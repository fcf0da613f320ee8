package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultIdleAfter   = 2 * time.Second
	DefaultMaxBodySize = int64(10 * 1024 * 1024)
	DefaultUserAgent   = "hfdl/1.0 (+https://github.com/raysh454/hfdl)"
)

// Config holds backend selection and the knobs shared by all backends.
type Config struct {
	Client      Client        `yaml:"backend"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	MaxBodySize int64         `yaml:"max_body_size"`

	// IdleAfter is how long the chromedp backend waits for the network to go quiet.
	IdleAfter time.Duration `yaml:"idle_after"`
	// Headless can be set to false to watch the chromedp browser.
	Headless *bool `yaml:"headless,omitempty"`
}

// DefaultConfig returns the nethttp backend with default limits.
func DefaultConfig() Config {
	return Config{
		Client:      ClientNetHTTP,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		IdleAfter:   DefaultIdleAfter,
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = DefaultIdleAfter
	}
	return c
}
