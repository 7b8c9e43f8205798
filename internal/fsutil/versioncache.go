// Package fsutil implements small on-disk caching helpers shared across
// the resolver and installer, grounded on the teacher's
// internal/version.CachedVersionLister (file-based, JSON, TTL-expiring
// cache entries under a per-source file).
package fsutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tsukumogami/vx/internal/registry"
)

// DefaultVersionCacheTTL is used when a project doesn't set
// settings.cache_duration, the same one-hour default the teacher's
// own config package falls back to for its version cache.
const DefaultVersionCacheTTL = 1 * time.Hour

// versionCacheEntry is the on-disk shape of one runtime's cached
// fetch_versions result, per spec §4.4's cache/<runtime>/ layout.
type versionCacheEntry struct {
	Versions  []registry.VersionInfo `json:"versions"`
	CachedAt  time.Time              `json:"cached_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// VersionCache is a TTL-expiring, file-backed cache of each runtime's
// FetchVersions result, keyed by runtime name. One JSON file per
// runtime under cacheDir, so `vx cache clean --downloads` can simply
// remove the whole tree without understanding its contents.
type VersionCache struct {
	cacheDir string
	ttl      time.Duration
}

// NewVersionCache builds a VersionCache rooted at cacheDir/versions. A
// zero ttl falls back to DefaultVersionCacheTTL.
func NewVersionCache(cacheDir string, ttl time.Duration) *VersionCache {
	if ttl <= 0 {
		ttl = DefaultVersionCacheTTL
	}
	return &VersionCache{cacheDir: filepath.Join(cacheDir, "versions"), ttl: ttl}
}

// Get returns the cached version list for runtime, iff it exists and
// hasn't expired.
func (c *VersionCache) Get(runtime string) ([]registry.VersionInfo, bool) {
	data, err := os.ReadFile(c.entryPath(runtime))
	if err != nil {
		return nil, false
	}
	var entry versionCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Versions, true
}

// Put records versions as runtime's fetch_versions result, valid for
// the cache's configured TTL from now.
func (c *VersionCache) Put(runtime string, versions []registry.VersionInfo) error {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create version cache directory: %w", err)
	}

	entry := versionCacheEntry{
		Versions:  versions,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(c.ttl),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal version cache entry: %w", err)
	}

	path := c.entryPath(runtime)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp version cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename version cache file: %w", err)
	}
	return nil
}

// Invalidate drops runtime's cached entry, if any.
func (c *VersionCache) Invalidate(runtime string) error {
	err := os.Remove(c.entryPath(runtime))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *VersionCache) entryPath(runtime string) string {
	return filepath.Join(c.cacheDir, runtime+".json")
}
