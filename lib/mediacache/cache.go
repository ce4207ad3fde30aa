// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package mediacache is a bounded on-disk cache for fetched post images.
//
// Entries are addressed by the BLAKE3 digest of the resolved image URL,
// stored compressed when that actually saves space, and evicted least
// recently used once the cache exceeds its byte budget. The index is a
// single CBOR file; a missing or corrupt index drops the cache rather
// than failing the caller, a cache never owes anyone its contents.
package mediacache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/fotoline-project/fotoline/lib/codec"
)

// DefaultMaxBytes bounds the stored (compressed) size of the cache.
const DefaultMaxBytes = 256 << 20

const indexFileName = "index.cbor"

// CacheConfig configures a Cache.
type CacheConfig struct {
	// Path is the cache directory, created if absent.
	Path string
	// MaxBytes bounds the stored size. Defaults to DefaultMaxBytes.
	MaxBytes int64
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// entry is one cached image in the index.
type entry struct {
	URL        string         `cbor:"url"`
	Size       int            `cbor:"size"`
	StoredSize int            `cbor:"stored_size"`
	Tag        CompressionTag `cbor:"tag"`
	LastUsed   int64          `cbor:"last_used"`
}

// Cache is an on-disk LRU image cache. Safe for concurrent use.
type Cache struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger

	mu          sync.Mutex
	entries     map[string]*entry
	storedBytes int64

	// now is overridable for eviction-order tests.
	now func() time.Time
}

// Open opens or creates a cache at the configured path. An unreadable
// index is discarded along with any stored objects it described.
func Open(config CacheConfig) (*Cache, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("mediacache: cache path is required")
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	if config.MaxBytes < 0 {
		return nil, fmt.Errorf("mediacache: max bytes must be positive, got %d", config.MaxBytes)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("mediacache: creating cache directory: %w", err)
	}

	cache := &Cache{
		dir:      config.Path,
		maxBytes: config.MaxBytes,
		logger:   logger,
		entries:  make(map[string]*entry),
		now:      time.Now,
	}

	indexData, err := os.ReadFile(filepath.Join(config.Path, indexFileName))
	switch {
	case os.IsNotExist(err):
		// Fresh cache.
	case err != nil:
		return nil, fmt.Errorf("mediacache: reading index: %w", err)
	default:
		var stored map[string]*entry
		if err := codec.Unmarshal(indexData, &stored); err != nil {
			logger.Warn("cache index unreadable, starting fresh", "error", err)
			break
		}
		for digest, item := range stored {
			cache.entries[digest] = item
			cache.storedBytes += int64(item.StoredSize)
		}
	}

	return cache, nil
}

// Key returns the cache key for a resolved image URL.
func Key(url string) string {
	sum := blake3.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)
}

func (c *Cache) objectPath(digest string) string {
	return filepath.Join(c.dir, "objects", digest[:2], digest)
}

// Get returns the cached bytes for url, or ok false on a miss. A stored
// object that fails to read back is evicted and reported as a miss.
func (c *Cache) Get(url string) ([]byte, bool) {
	digest := Key(url)

	c.mu.Lock()
	item, ok := c.entries[digest]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	item.LastUsed = c.now().Unix()
	c.mu.Unlock()

	stored, err := os.ReadFile(c.objectPath(digest))
	if err == nil {
		data, decompressErr := decompress(stored, item.Tag, item.Size)
		if decompressErr == nil {
			return data, true
		}
		err = decompressErr
	}

	c.logger.Warn("evicting unreadable cache entry", "url", url, "error", err)
	c.mu.Lock()
	c.dropLocked(digest)
	c.writeIndexLocked()
	c.mu.Unlock()
	return nil, false
}

// Put stores the bytes for url, evicting least recently used entries to
// stay under the byte budget. Objects larger than the whole budget are
// not cached.
func (c *Cache) Put(url string, data []byte) error {
	stored, tag := compress(data)
	if int64(len(stored)) > c.maxBytes {
		return nil
	}

	digest := Key(url)
	path := c.objectPath(digest)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mediacache: creating object directory: %w", err)
	}
	if err := os.WriteFile(path, stored, 0o644); err != nil {
		return fmt.Errorf("mediacache: writing object: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[digest]; ok {
		c.storedBytes -= int64(existing.StoredSize)
	}
	c.entries[digest] = &entry{
		URL:        url,
		Size:       len(data),
		StoredSize: len(stored),
		Tag:        tag,
		LastUsed:   c.now().Unix(),
	}
	c.storedBytes += int64(len(stored))

	c.evictLocked()
	return c.writeIndexLocked()
}

// GetOrFetch returns the cached bytes for url, fetching and caching on a
// miss. Fetch errors pass through; cache write failures are logged, not
// returned, the fetched bytes are still good.
func (c *Cache) GetOrFetch(ctx context.Context, url string, fetch func(context.Context, string) ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(url); ok {
		return data, nil
	}
	data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.Put(url, data); err != nil {
		c.logger.Warn("caching fetched image failed", "url", url, "error", err)
	}
	return data, nil
}

// Stats returns the entry count and stored (compressed) byte total.
func (c *Cache) Stats() (count int, storedBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.storedBytes
}

// Clear removes every entry and stored object.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for digest := range c.entries {
		c.dropLocked(digest)
	}
	return c.writeIndexLocked()
}

// evictLocked removes least recently used entries until the stored total
// fits the budget.
func (c *Cache) evictLocked() {
	if c.storedBytes <= c.maxBytes {
		return
	}

	type candidate struct {
		digest   string
		lastUsed int64
	}
	candidates := make([]candidate, 0, len(c.entries))
	for digest, item := range c.entries {
		candidates = append(candidates, candidate{digest: digest, lastUsed: item.LastUsed})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastUsed < candidates[j].lastUsed
	})

	for _, victim := range candidates {
		if c.storedBytes <= c.maxBytes {
			return
		}
		c.logger.Debug("evicting cache entry", "url", c.entries[victim.digest].URL)
		c.dropLocked(victim.digest)
	}
}

// dropLocked removes one entry and its object file. Callers hold c.mu.
func (c *Cache) dropLocked(digest string) {
	item, ok := c.entries[digest]
	if !ok {
		return
	}
	delete(c.entries, digest)
	c.storedBytes -= int64(item.StoredSize)
	if err := os.Remove(c.objectPath(digest)); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("removing cache object failed", "error", err)
	}
}

// writeIndexLocked persists the index atomically. Callers hold c.mu.
func (c *Cache) writeIndexLocked() error {
	data, err := codec.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("mediacache: encoding index: %w", err)
	}
	path := filepath.Join(c.dir, indexFileName)
	temp := path + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return fmt.Errorf("mediacache: writing index: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		return fmt.Errorf("mediacache: replacing index: %w", err)
	}
	return nil
}
