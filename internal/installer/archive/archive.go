// Package archive extracts install artifacts in the formats spec §4.5
// names, grounded on the teacher's internal/actions.ExtractAction:
// format-dispatched handlers sharing a common zip-slip check, a tar
// entry walker, and Unix exec-bit preservation.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
	lzip "github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz"
)

// Format names the archive formats the spec lists in §4.5.
type Format string

const (
	Zip    Format = "zip"
	TarGz  Format = "tar.gz"
	TarXz  Format = "tar.xz"
	TarBz2 Format = "tar.bz2"
	TarLz  Format = "tar.lz"
	TarZst Format = "tar.zst"
	SevenZ Format = "7z"
	Pkg    Format = "pkg"
	Msi    Format = "msi"
)

// ErrUnsupportedFormat is returned for formats the spec names but that
// have no Go-native extraction path in this driver (7z, pkg, msi all
// require invoking a platform-native tool; see DESIGN.md).
type ErrUnsupportedFormat struct{ Format Format }

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("archive format %q is not supported by the built-in extractor", e.Format)
}

// ErrZipSlip is returned when an archive entry's resolved path would
// escape destDir.
type ErrZipSlip struct{ Entry string }

func (e *ErrZipSlip) Error() string {
	return fmt.Sprintf("archive entry escapes destination directory: %s", e.Entry)
}

// DetectFormat guesses a Format from a filename's extension.
func DetectFormat(filename string) (Format, bool) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return TarGz, true
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return TarXz, true
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"), strings.HasSuffix(lower, ".tbz"):
		return TarBz2, true
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return TarZst, true
	case strings.HasSuffix(lower, ".tar.lz"), strings.HasSuffix(lower, ".tlz"):
		return TarLz, true
	case strings.HasSuffix(lower, ".zip"):
		return Zip, true
	case strings.HasSuffix(lower, ".7z"):
		return SevenZ, true
	case strings.HasSuffix(lower, ".pkg"):
		return Pkg, true
	case strings.HasSuffix(lower, ".msi"):
		return Msi, true
	default:
		return "", false
	}
}

// Extract dispatches to the format-specific handler and writes into
// destDir, which it creates if missing.
func Extract(format Format, archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	switch format {
	case Zip:
		return extractZip(archivePath, destDir)
	case TarGz:
		return withTarReader(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			gzr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return gzr, gzr.Close, nil
		})
	case TarXz:
		return withTarReader(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			xzr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return xzr, func() error { return nil }, nil
		})
	case TarBz2:
		return withTarReader(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			return bzip2.NewReader(r), func() error { return nil }, nil
		})
	case TarZst:
		return withTarReader(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return zr.IOReadCloser(), zr.Close, nil
		})
	case TarLz:
		return withTarReader(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			lr, err := lzip.NewReader(r)
			if err != nil {
				return nil, nil, err
			}
			return lr, func() error { return nil }, nil
		})
	case SevenZ, Pkg, Msi:
		return &ErrUnsupportedFormat{Format: format}
	default:
		return &ErrUnsupportedFormat{Format: format}
	}
}

func withTarReader(archivePath, destDir string, wrap func(io.Reader) (io.Reader, func() error, error)) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	decompressed, closeFn, err := wrap(f)
	if err != nil {
		return fmt.Errorf("open decompressor for %s: %w", archivePath, err)
	}
	defer closeFn()

	return extractTarEntries(tar.NewReader(decompressed), destDir)
}

func extractTarEntries(tr *tar.Reader, destDir string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeRegularFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(header.Linkname, target, destDir); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, entry := range r.File {
		target, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}
		err = writeRegularFile(target, rc, entry.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// safeJoin resolves name under destDir and rejects entries that escape
// it (zip slip), per spec §4.5.
func safeJoin(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)
	target := filepath.Join(root, name)
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", &ErrZipSlip{Entry: name}
	}
	return target, nil
}

// writeSymlink validates that a symlink's target stays within destDir
// before creating it; absolute targets are always rejected.
func writeSymlink(linkTarget, linkPath, destDir string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("absolute symlink targets are not allowed: %s -> %s", linkPath, linkTarget)
	}
	resolved := filepath.Join(filepath.Dir(linkPath), linkTarget)
	if resolved != destDir && !strings.HasPrefix(resolved, destDir+string(filepath.Separator)) {
		return &ErrZipSlip{Entry: linkPath}
	}
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return fmt.Errorf("create parent of symlink %s: %w", linkPath, err)
	}
	_ = os.Remove(linkPath)
	return os.Symlink(linkTarget, linkPath)
}

// writeRegularFile writes an entry's contents to target, preserving the
// execute bit from mode on Unix (spec §4.5: "any entry whose original
// mode had any execute bit gets chmod +x").
func writeRegularFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", target, err)
	}
	out, err := openForWrite(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	if runtime.GOOS != "windows" && mode&0o111 != 0 {
		if err := os.Chmod(target, mode|0o111); err != nil {
			return fmt.Errorf("chmod +x %s: %w", target, err)
		}
	}
	return nil
}
