package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written to Redis.
const KeyPrefix = "hfdl:links:"

// RedisConfig points the cache at a Redis server.
type RedisConfig struct {
	Addr     string `yaml:"redis_addr"`
	Password string `yaml:"redis_password"`
	DB       int    `yaml:"redis_db"`
}

// Redis stores link lists as JSON strings with a TTL.
type Redis struct {
	client *redis.Client
}

// NewRedis connects lazily; the first command dials the server.
func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{client: rdb}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Ping checks the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failure: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]string, bool, error) {
	val, err := r.client.Get(ctx, KeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failure: %w", err)
	}

	var links []string
	if err := json.Unmarshal([]byte(val), &links); err != nil {
		return nil, false, fmt.Errorf("decoding cached links for %s: %w", key, err)
	}
	return links, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, links []string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if links == nil {
		links = []string{}
	}
	data, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("encoding links for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, KeyPrefix+key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failure: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
