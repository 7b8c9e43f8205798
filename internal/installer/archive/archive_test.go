package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gzw := gzip.NewWriter(f)
	defer gzw.Close()
	tw := tar.NewWriter(gzw)
	defer tw.Close()
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o755, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
}

func TestDetectFormat(t *testing.T) {
	f, ok := DetectFormat("node-v20.10.0-linux-x64.tar.gz")
	require.True(t, ok)
	assert.Equal(t, TarGz, f)

	f, ok = DetectFormat("tool.zip")
	require.True(t, ok)
	assert.Equal(t, Zip, f)

	_, ok = DetectFormat("tool.unknownext")
	assert.False(t, ok)
}

func TestExtractTarGzWritesFilesAndPreservesExecBit(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.tar.gz")
	writeTestTarGz(t, archivePath, map[string]string{
		"bin/tool": "#!/bin/sh\necho hi\n",
	})

	destDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(TarGz, archivePath, destDir))

	info, err := os.Stat(filepath.Join(destDir, "bin", "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111)
}

func TestExtractZipRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../../etc/passwd")
	require.NoError(t, err)
	_, _ = w.Write([]byte("pwned"))
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(archivePath, buf.Bytes(), 0o644))

	destDir := filepath.Join(dir, "out")
	err = Extract(Zip, archivePath, destDir)
	var slip *ErrZipSlip
	require.ErrorAs(t, err, &slip)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(destDir), "etc", "passwd"))
	assert.True(t, os.IsNotExist(statErr), "traversal entry must not land outside destDir")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	err := Extract(SevenZ, "whatever.7z", t.TempDir())
	var unsupported *ErrUnsupportedFormat
	assert.ErrorAs(t, err, &unsupported)
}
