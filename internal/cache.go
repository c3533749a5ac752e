package internal

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/gnolang/pygolf/internal/types"
)

const cacheFileName = "golf_cache.gob"

type CacheEntry struct {
	Result       tt.Result
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache keeps shortening results on disk, keyed by the source text and
// the engine configuration.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.Mutex
	maxAge   time.Duration
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	file, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

func (c *Cache) save() error {
	tmp, err := os.CreateTemp(c.CacheDir, "cache_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(c.entries); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp.Name(), c.path())
}

func cacheKey(src, fingerprint string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:]) + "|" + fingerprint
}

func (c *Cache) Set(src, fingerprint string, res *tt.Result) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry := CacheEntry{
		Result:       *res,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
	entry.Result.Filename = ""
	entry.Result.Cached = false
	c.entries[cacheKey(src, fingerprint)] = entry

	return c.save()
}

// Get returns a copy of the result stored for src.
func (c *Cache) Get(src, fingerprint string) (*tt.Result, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := cacheKey(src, fingerprint)
	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		delete(c.entries, key)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[key] = entry

	res := entry.Result
	if entry.Result.Applied != nil {
		res.Applied = make(map[string]int, len(entry.Result.Applied))
		for name, n := range entry.Result.Applied {
			res.Applied[name] = n
		}
	}
	return &res, true
}

// SetMaxAge expires entries older than d. Zero keeps entries forever.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = d
}

func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	return c.save()
}
