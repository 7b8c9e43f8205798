//go:build !windows

package archive

import "os"

// openForWrite is the Unix path: no MAX_PATH concern.
func openForWrite(target string) (*os.File, error) {
	return os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}
