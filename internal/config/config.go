// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Session cache policies. Exactly one is active per process.
const (
	SessionCachePolicyLRU = "lru"
	SessionCachePolicyTTL = "ttl"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DatabaseURL string
	BlueskyHost string

	// SessionCachePolicy selects how cached clients are evicted: "lru"
	// bounds the cache by entry count, "ttl" expires entries after a fixed
	// interval.
	SessionCachePolicy string
	SessionCacheSize   int
	// SessionCacheTTL should stay below the upstream access-token lifetime
	// (about two hours) so a cache hit never returns a client whose token
	// is known-expired.
	SessionCacheTTL time.Duration

	FeedCacheTTL  time.Duration
	HomeCacheTTL  time.Duration
	TimelineLimit int64

	// Optional per-handle deep-link rewrite, for deployments where the
	// upstream returns staging URLs.
	RewriteHandle   string
	RewriteFromHost string
	RewriteToHost   string
}

// Load reads configuration from environment variables and returns a
// validated Config. DATABASE_URL is required. Optional variables with
// defaults: LISTEN_ADDR (:8080), BLUESKY_HOST (https://bsky.social),
// SESSION_CACHE_POLICY (lru), SESSION_CACHE_SIZE (1000),
// SESSION_CACHE_TTL (90m), FEED_CACHE_TTL (15m), HOME_CACHE_TTL (24h),
// TIMELINE_LIMIT (50).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         ":8080",
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		BlueskyHost:        os.Getenv("BLUESKY_HOST"),
		SessionCachePolicy: SessionCachePolicyLRU,
		SessionCacheSize:   1000,
		SessionCacheTTL:    90 * time.Minute,
		FeedCacheTTL:       15 * time.Minute,
		HomeCacheTTL:       24 * time.Hour,
		TimelineLimit:      50,
		RewriteHandle:      os.Getenv("REWRITE_HANDLE"),
		RewriteFromHost:    os.Getenv("REWRITE_FROM_HOST"),
		RewriteToHost:      os.Getenv("REWRITE_TO_HOST"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("SESSION_CACHE_POLICY"); ok {
		if v != SessionCachePolicyLRU && v != SessionCachePolicyTTL {
			return nil, fmt.Errorf("SESSION_CACHE_POLICY must be %q or %q, got %q",
				SessionCachePolicyLRU, SessionCachePolicyTTL, v)
		}
		cfg.SessionCachePolicy = v
	}

	if v, ok := os.LookupEnv("SESSION_CACHE_SIZE"); ok {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("SESSION_CACHE_SIZE must be a positive integer, got %q", v)
		}
		cfg.SessionCacheSize = size
	}

	var err error
	if cfg.SessionCacheTTL, err = durationEnv("SESSION_CACHE_TTL", cfg.SessionCacheTTL); err != nil {
		return nil, err
	}
	if cfg.FeedCacheTTL, err = durationEnv("FEED_CACHE_TTL", cfg.FeedCacheTTL); err != nil {
		return nil, err
	}
	if cfg.HomeCacheTTL, err = durationEnv("HOME_CACHE_TTL", cfg.HomeCacheTTL); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("TIMELINE_LIMIT"); ok {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("TIMELINE_LIMIT must be a positive integer, got %q", v)
		}
		cfg.TimelineLimit = limit
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", name, v, err)
	}
	return parsed, nil
}
