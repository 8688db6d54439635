package mcpserver

import (
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Validator settings applied to every contract.
	StrictContract bool
	RedactHeaders  bool
	Exceptions     []string

	// Output limits.
	ErrorLimit    int
	MaxLimit      int
	MaxInlineSize int64
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASGATE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("OASGATE_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("OASGATE_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("OASGATE_CACHE_FILE_TTL", 15*time.Minute),
		CacheContentTTL:    envDuration("OASGATE_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("OASGATE_CACHE_SWEEP_INTERVAL", 60*time.Second),
		StrictContract:     envBool("OASGATE_STRICT_CONTRACT", false),
		RedactHeaders:      envBool("OASGATE_REDACT_HEADERS", false),
		Exceptions:         envPatterns("OASGATE_EXCEPTIONS"),
		ErrorLimit:         envInt("OASGATE_ERROR_LIMIT", 100),
		MaxLimit:           envInt("OASGATE_MAX_LIMIT", 1000),
		MaxInlineSize:      int64(envInt("OASGATE_MAX_INLINE_SIZE", 10*1024*1024)),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

// envPatterns reads a comma-separated list of exception regexps. Patterns
// that do not compile are dropped with a warning.
func envPatterns(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var patterns []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			slog.Warn("invalid exception pattern, ignoring", "key", key, "pattern", p, "error", err)
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}
