package demoserver

// Config holds configuration for the demo mirror.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// FailFirst makes the first N listing requests answer 503 so clients
	// exercise their retry path. Reset through /demo/fail.
	FailFirst int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port: 9999,
	}
}
