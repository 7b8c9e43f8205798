// Package execpath implements the (install_dir, exe_name) -> absolute
// path cache from spec §4.7, bypassing directory traversal on every
// invocation. Persisted as a versioned gob blob — Go's idiomatic
// analogue of the spec's "versioned binary structure" (the original
// Rust implementation uses bincode/serde; gob is the corresponding
// stdlib-adjacent choice the teacher's stack would reach for since
// nothing in the example pack brings a binary codec of its own).
package execpath

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// formatVersion is bumped whenever the on-disk schema changes. An
// incompatible version on disk is discarded rather than misinterpreted.
const formatVersion = 1

type key struct {
	Dir  string
	Name string
}

type onDisk struct {
	Version int
	Entries map[key]string
}

// Cache is the in-memory, disk-backed exec-path cache. Reads are
// lock-free; writes acquire a file lock shared across processes.
type Cache struct {
	path string
	mu   sync.RWMutex
	data onDisk
}

// Load reads the cache file at path, returning an empty cache if the
// file is missing or its format version doesn't match.
func Load(path string) (*Cache, error) {
	c := &Cache{path: path, data: onDisk{Version: formatVersion, Entries: make(map[key]string)}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read exec-path cache: %w", err)
	}

	var decoded onDisk
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&decoded); err != nil {
		// Corrupt or pre-gob file: treat as empty rather than failing
		// the whole pipeline over a cache that exists purely as an
		// optimization.
		return c, nil
	}
	if decoded.Version != formatVersion {
		return c, nil
	}
	if decoded.Entries == nil {
		decoded.Entries = make(map[key]string)
	}
	c.data = decoded
	return c, nil
}

// Get returns the cached absolute path for (dir, name) iff it still
// exists on disk; a stale entry is removed as a side effect of the
// read, per spec §4.7.
func (c *Cache) Get(dir, name string) (string, bool) {
	c.mu.RLock()
	path, ok := c.data.Entries[key{Dir: dir, Name: name}]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		c.mu.Lock()
		delete(c.data.Entries, key{Dir: dir, Name: name})
		c.mu.Unlock()
		return "", false
	}
	return path, true
}

// Put records path as the resolved executable for (dir, name) and
// persists the cache.
func (c *Cache) Put(dir, name, path string) error {
	c.mu.Lock()
	c.data.Entries[key{Dir: dir, Name: name}] = path
	c.mu.Unlock()
	return c.save()
}

// InvalidateRuntime removes every entry whose directory key is storeDir
// or lives under it, called on install/uninstall of the enclosing
// version.
func (c *Cache) InvalidateRuntime(storeDir string) error {
	c.mu.Lock()
	for k := range c.data.Entries {
		if k.Dir == storeDir || strings.HasPrefix(k.Dir, storeDir+string(filepath.Separator)) {
			delete(c.data.Entries, k)
		}
	}
	c.mu.Unlock()
	return c.save()
}

// Clear empties the cache entirely.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.data.Entries = make(map[key]string)
	c.mu.Unlock()
	return c.save()
}

// save persists the cache atomically (temp file + rename), guarded by
// a file lock so concurrent processes don't interleave writes.
func (c *Cache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	fl := flock.New(c.path + ".writelock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire exec-path cache lock: %w", err)
	}
	defer fl.Unlock()

	var buf bytes.Buffer
	c.mu.RLock()
	err := gob.NewEncoder(&buf).Encode(c.data)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode exec-path cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".exec-paths.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, c.path)
}
