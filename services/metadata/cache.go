package metadata

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// responseCache stores provider responses as JSON files under a cache
// directory. Expiry is judged from the file's mtime so no index is needed.
type responseCache struct {
	dir string
	ttl time.Duration
}

func newResponseCache(dir string, ttlHours int) *responseCache {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &responseCache{dir: dir, ttl: time.Duration(ttlHours) * time.Hour}
}

// entryTTL staggers expiry per key between the base TTL and base + 2 hours.
// The stagger is derived from the key so a given entry always expires at the
// same age, while the set as a whole does not expire all at once.
func (c *responseCache) entryTTL(key string) time.Duration {
	h := sha1.Sum([]byte(key))
	n := binary.BigEndian.Uint64(h[:8])
	return c.ttl + time.Duration(n%uint64(2*time.Hour))
}

func (c *responseCache) get(key string, v any) bool {
	if key == "" {
		return false
	}
	path := filepath.Join(c.dir, key+".json")
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(fi.ModTime()) > c.entryTTL(key) {
		_ = os.Remove(path)
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *responseCache) set(key string, v any) error {
	if key == "" {
		return errors.New("empty cache key")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := filepath.Join(c.dir, key+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// clear drops every cached response. Called when the API key or language
// changes so stale localized data does not linger for a full TTL.
func (c *responseCache) clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		_ = os.Remove(filepath.Join(c.dir, entry.Name()))
	}
	return nil
}

func cacheKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}
