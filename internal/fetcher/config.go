package fetcher

import "github.com/raysh454/hfdl/internal/retry"

type Config struct {
	Retry retry.Config `yaml:"retry"`
}

func DefaultConfig() Config {
	return Config{Retry: retry.DefaultConfig()}
}
