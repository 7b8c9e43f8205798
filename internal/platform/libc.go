package platform

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// currentLibc detects the C library flavor on Linux. Every other OS
// reports System since the distinction is meaningless there.
func currentLibc() Libc {
	if runtime.GOOS != "linux" {
		return System
	}
	if probeMuslByLdSoPath() {
		return Musl
	}
	if probeMuslByLddVersion() {
		return Musl
	}
	return Glibc
}

// probeMuslByLdSoPath looks for musl's dynamic linker, which ships as
// /lib/ld-musl-<arch>.so.1 and is absent on glibc systems.
func probeMuslByLdSoPath() bool {
	matches, err := filepath.Glob("/lib/ld-musl-*.so.1")
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// probeMuslByLddVersion falls back to parsing `ldd --version`, which
// prints "musl libc" on musl systems and a glibc copyright banner
// otherwise.
func probeMuslByLddVersion() bool {
	out, _ := exec.Command("ldd", "--version").CombinedOutput()
	if len(out) == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(string(out)), "musl")
}
