//go:build windows

package archive

import (
	"os"
	"path/filepath"
	"strings"
)

// maxPath is the classic Windows MAX_PATH limit; paths at or beyond it
// need the extended-length prefix to be usable with the Win32 API.
const maxPath = 260

// extendedLengthPrefix marks a path as extended-length, bypassing
// MAX_PATH, per spec §4.5 ("Windows strategy" note under Extract).
const extendedLengthPrefix = `\\?\`

// openForWrite transparently rewrites target with the extended-length
// prefix when its absolute form would exceed MAX_PATH. The prefix
// never leaks back to the caller; Extract's return values are always
// the plain path.
func openForWrite(target string) (*os.File, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	openPath := target
	if len(abs) >= maxPath && !strings.HasPrefix(abs, extendedLengthPrefix) {
		openPath = extendedLengthPrefix + abs
	}
	return os.OpenFile(openPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}
