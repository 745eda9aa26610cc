package redis

import "time"

// Config holds Redis connection and session settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// SessionID namespaces this client's keys; generated when empty
	SessionID string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// SessionTTL expires the whole session; refreshed on every write
	SessionTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     4,
		MinIdleConns: 1,
		SessionTTL:   12 * time.Hour,
	}
}
