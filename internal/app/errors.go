package app

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrEmptyListenAddr is returned when the server has nowhere to listen.
	ErrEmptyListenAddr = errors.New("invalid config: listen address is empty")

	// ErrInvalidMaxAttempts is returned when fewer than one fetch attempt is configured.
	ErrInvalidMaxAttempts = errors.New("invalid config: max attempts must be at least 1")

	// ErrInvalidRetryWait is returned for a negative wait between attempts.
	ErrInvalidRetryWait = errors.New("invalid config: retry wait must be non-negative")

	// ErrInvalidCacheTTL is returned for a negative cache TTL. Use 0 to disable caching.
	ErrInvalidCacheTTL = errors.New("invalid config: cache ttl must be non-negative")

	// ErrUnknownBackend is returned when the webclient backend is not registered.
	ErrUnknownBackend = errors.New("invalid config: unknown webclient backend")
)

// Service errors.
var (
	// ErrClosed is returned when work is submitted after Close.
	ErrClosed = errors.New("service is closed")

	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("job not found")
)
