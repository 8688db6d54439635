package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oasgate/contract"
	"github.com/erraggy/oasgate/httpvalidator"
)

// contractInput represents the two ways a contract can be provided to a tool.
// Exactly one of File or Content must be set.
type contractInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a Swagger 2.0 contract on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline Swagger 2.0 contract (JSON or YAML)"`
}

// cacheEntry holds a compiled validator with LRU ordering and TTL expiry.
type cacheEntry struct {
	validator *httpvalidator.Validator
	insertAt  time.Time
	expiresAt time.Time
}

// validatorCacheStore provides a session-scoped cache for compiled validators.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. Entries have per-type TTLs and a background sweeper
// removes expired entries.
type validatorCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var validatorCache = &validatorCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached validator or nil. Expired entries are lazily removed.
func (c *validatorCacheStore) get(key string) *httpvalidator.Validator {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.validator
	}
	return nil
}

// putWithTTL stores a validator with a specific TTL, evicting the oldest entry if at capacity.
func (c *validatorCacheStore) putWithTTL(key string, v *httpvalidator.Validator, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{validator: v, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *validatorCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *validatorCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *validatorCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *validatorCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given contract input.
func makeCacheKey(s contractInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return "content:" + hex.EncodeToString(h[:])
	default:
		return ""
	}
}

// resolve parses and compiles the contract from whichever input was
// provided, using the cache when it is enabled.
func (s contractInput) resolve() (*httpvalidator.Validator, error) {
	if (s.File == "") == (s.Content == "") {
		return nil, fmt.Errorf("exactly one of file or content must be provided")
	}

	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASGATE_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	var key string
	ttl := cfg.CacheContentTTL
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		if s.File != "" {
			ttl = cfg.CacheFileTTL
		}
	}

	if key != "" {
		if cached := validatorCache.get(key); cached != nil {
			return cached, nil
		}
	}

	var opt contract.Option
	if s.File != "" {
		opt = contract.WithFilePath(s.File)
	} else {
		opt = contract.WithBytes([]byte(s.Content))
	}
	doc, err := contract.ParseWithOptions(opt)
	if err != nil {
		return nil, err
	}

	v, err := httpvalidator.New(doc,
		httpvalidator.WithLogger(slog.Default()),
		httpvalidator.WithStrictContract(cfg.StrictContract),
		httpvalidator.WithRedactHeaders(cfg.RedactHeaders),
		httpvalidator.WithExceptions(cfg.Exceptions...),
	)
	if err != nil {
		return nil, err
	}

	if key != "" {
		validatorCache.putWithTTL(key, v, ttl)
	}
	return v, nil
}
