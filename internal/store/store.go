package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/tsukumogami/vx/internal/vxconfig"
)

// Store is the content-addressed install tree under
// Config.ToolsDir/<runtime>/<version>.
type Store struct {
	cfg *vxconfig.Config
}

// New builds a Store rooted at cfg's layout.
func New(cfg *vxconfig.Config) *Store {
	return &Store{cfg: cfg}
}

// InstallDir returns the on-disk install root for (name, version).
func (s *Store) InstallDir(name, version string) string {
	return s.cfg.ToolDir(name, version)
}

// IsInstalled reports whether an install tree already exists for
// (name, version). It does not validate the tree's contents — that's
// the runtime's VerifyInstallation's job.
func (s *Store) IsInstalled(name, version string) bool {
	info, err := os.Stat(s.InstallDir(name, version))
	return err == nil && info.IsDir()
}

// Lock acquires the per-(name,version) install lock used to serialize
// concurrent installers targeting the same tree (spec §5). The
// returned unlock func must be called to release it.
func (s *Store) Lock(name, version string) (unlock func() error, err error) {
	path := s.cfg.VersionLockPath(name, version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire install lock for %s@%s: %w", name, version, err)
	}
	return fl.Unlock, nil
}

// Remove deletes an install tree entirely. Callers are responsible for
// updating the lockfile first or after, per the "install tree removed
// only after lock entry updated" ordering in spec §4.4.
func (s *Store) Remove(name, version string) error {
	dir := s.InstallDir(name, version)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove install tree %s: %w", dir, err)
	}
	// Best-effort cleanup of the per-version lock file; a stale lock
	// file with no matching tree is harmless but untidy.
	_ = os.Remove(s.cfg.VersionLockPath(name, version))
	return nil
}

// PrepareInstallDir creates a fresh, empty directory for a new install,
// removing any partial leftovers from a previous failed attempt.
func (s *Store) PrepareInstallDir(name, version string) (string, error) {
	dir := s.InstallDir(name, version)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clear stale install dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create install dir: %w", err)
	}
	return dir, nil
}
