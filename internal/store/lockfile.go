// Package store implements the content-addressed install tree and the
// project lockfile (spec §4.4), grounded on the teacher's
// internal/install state handling and BurntSushi/toml for the
// on-disk format.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

// LockedTool is one entry in the lockfile's tools table.
type LockedTool struct {
	Version      string     `toml:"version"`
	Source       string     `toml:"source"`
	ResolvedFrom string     `toml:"resolved_from"`
	Ecosystem    string     `toml:"ecosystem,omitempty"`
	Checksum     string     `toml:"checksum,omitempty"`
	InstalledAt  *time.Time `toml:"installed_at,omitempty"`
}

// LockFile is the parsed form of vx.lock.
type LockFile struct {
	Tools        map[string]LockedTool `toml:"tools"`
	Dependencies map[string][]string   `toml:"dependencies"`

	path string
}

// NewLockFile builds an empty lockfile bound to path, for a project
// that has never synced before.
func NewLockFile(path string) *LockFile {
	return &LockFile{
		Tools:        make(map[string]LockedTool),
		Dependencies: make(map[string][]string),
		path:         path,
	}
}

// LoadLockFile reads and parses path. A missing file is not an error:
// it returns a fresh empty LockFile, matching a project's first sync.
func LoadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewLockFile(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lockfile: %w", err)
	}
	lf := NewLockFile(path)
	if _, err := toml.Decode(string(data), lf); err != nil {
		return nil, fmt.Errorf("parse lockfile %s: %w", path, err)
	}
	if lf.Tools == nil {
		lf.Tools = make(map[string]LockedTool)
	}
	if lf.Dependencies == nil {
		lf.Dependencies = make(map[string][]string)
	}
	return lf, nil
}

// Save writes the lockfile atomically: encode to a temp file in the
// same directory, then rename over the target. A file lock serializes
// concurrent writers (spec §4.4's atomicity property).
func (lf *LockFile) Save() error {
	dir := filepath.Dir(lf.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(lf.path + ".writelock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lockfile write lock: %w", err)
	}
	defer fl.Unlock()

	tmp, err := os.CreateTemp(dir, ".vx.lock.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp lockfile: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := toml.NewEncoder(tmp).Encode(lf); err != nil {
		tmp.Close()
		return fmt.Errorf("encode lockfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp lockfile: %w", err)
	}
	if err := os.Rename(tmpPath, lf.path); err != nil {
		return fmt.Errorf("rename temp lockfile into place: %w", err)
	}
	return nil
}

// SetTool records a tool's lock entry and its transitive dependency
// list in a single update, per the "adding a tool" discipline in
// spec §4.4.
func (lf *LockFile) SetTool(name string, tool LockedTool, deps []string) {
	lf.Tools[name] = tool
	if len(deps) > 0 {
		lf.Dependencies[name] = deps
	} else {
		delete(lf.Dependencies, name)
	}
}

// Prune removes every tool not in keep, then drops dependency entries
// for pruned keys, filters remaining dependency lists down to keep, and
// finally drops any dependency entry that became empty. Returns the
// names of tools that were removed.
func (lf *LockFile) Prune(keep map[string]bool) []string {
	var removed []string
	for name := range lf.Tools {
		if !keep[name] {
			removed = append(removed, name)
			delete(lf.Tools, name)
		}
	}
	for name := range lf.Dependencies {
		if !keep[name] {
			delete(lf.Dependencies, name)
		}
	}
	for name, deps := range lf.Dependencies {
		filtered := deps[:0:0]
		for _, d := range deps {
			if keep[d] {
				filtered = append(filtered, d)
			}
		}
		if len(filtered) == 0 {
			delete(lf.Dependencies, name)
		} else {
			lf.Dependencies[name] = filtered
		}
	}
	return removed
}
