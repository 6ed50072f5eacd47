package httputil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/storelink/pkg/observability"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL). The stale data is still on disk; callers
// fetch fresh data and overwrite it with [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache stores JSON-marshalable values as files named by the SHA-256 of
// their key. Entries expire based on file modification time; a TTL of 0
// disables expiry.
//
// Cache is not goroutine-safe, but several processes may share a directory.
// [Cache.Namespace] returns a view that prefixes every key:
//
//	npm := cache.Namespace("npm:")
//	npm.Set("left-pad", versions) // key becomes "npm:left-pad"
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// DefaultDir returns the registry metadata cache directory:
// $XDG_CACHE_HOME/storelink (or the platform equivalent).
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "storelink", "http"), nil
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
// An empty dir selects [DefaultDir]. The directory is created if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live for entries. Zero means no expiry.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get retrieves the value stored under key into v.
//
//   - (true, nil): hit, v is populated
//   - (false, nil): miss, v is unchanged
//   - (false, ErrExpired): entry is stale
//   - (false, err): I/O or decode failure
func (c *Cache) Get(key string, v any) (bool, error) {
	ctx := context.Background()
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		observability.Cache().OnCacheMiss(ctx, c.keyType())
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		observability.Cache().OnCacheMiss(ctx, c.keyType())
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	observability.Cache().OnCacheHit(ctx, c.keyType())
	return true, nil
}

// Set stores v under key, overwriting any existing entry and refreshing its TTL.
// The write goes through a temporary file so concurrent readers never see a
// partial entry.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := c.keyPath(c.prefix + key)
	tmp, err := os.CreateTemp(c.dir, ".set-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	observability.Cache().OnCacheSet(context.Background(), c.keyType(), len(data))
	return nil
}

// Delete removes the entry for key. A missing entry is not an error.
func (c *Cache) Delete(key string) error {
	err := os.Remove(c.keyPath(c.prefix + key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry in the cache directory and reports how many
// files were deleted. Namespaces share a directory, so Clear on any view
// empties all of them.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Namespace returns a view of the cache whose keys are prefixed with prefix.
// Calls chain: Namespace("a:").Namespace("b:") prefixes "a:b:".
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

func (c *Cache) keyType() string {
	if c.prefix == "" {
		return "default"
	}
	return strings.TrimSuffix(c.prefix, ":")
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
