package cache

import (
	"context"
	"time"

	"github.com/raysh454/hfdl/internal/logging"
)

// DefaultTTL is how long a listing stays cached.
const DefaultTTL = 10 * time.Minute

// Config selects the cache implementation. TTL <= 0 disables caching; a
// non-empty RedisAddr selects Redis over the in-memory cache.
type Config struct {
	TTL         time.Duration `yaml:"ttl"`
	RedisConfig `yaml:",inline"`
}

// DefaultConfig caches in memory for DefaultTTL.
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL}
}

// New builds the cache described by cfg. A Redis cache is pinged once so a
// wrong address fails at startup instead of on every request.
func New(ctx context.Context, cfg Config, logger logging.Logger) (Cache, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	switch {
	case cfg.TTL <= 0:
		logger.Info("listing cache disabled")
		return Noop{}, nil
	case cfg.Addr != "":
		r := NewRedis(cfg.RedisConfig)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		logger.Info("using redis listing cache", logging.Field{Key: "addr", Value: cfg.Addr}, logging.Field{Key: "ttl", Value: cfg.TTL.String()})
		return r, nil
	default:
		logger.Info("using in-memory listing cache", logging.Field{Key: "ttl", Value: cfg.TTL.String()})
		return NewMemory(), nil
	}
}
