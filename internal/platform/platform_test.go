package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentIsNeverEmpty(t *testing.T) {
	p := Current()
	assert.NotEmpty(t, p.OS)
	assert.NotEmpty(t, p.Arch)
	assert.NotEmpty(t, p.Libc)
}

func TestMatchesIgnoresLibcWildcard(t *testing.T) {
	host := Platform{OS: Linux, Arch: X86_64, Libc: Musl}
	assert.True(t, host.Matches(Platform{OS: Linux, Arch: X86_64}))
	assert.True(t, host.Matches(Platform{OS: Linux, Arch: X86_64, Libc: Musl}))
	assert.False(t, host.Matches(Platform{OS: Linux, Arch: X86_64, Libc: Glibc}))
	assert.False(t, host.Matches(Platform{OS: Windows, Arch: X86_64}))
}

func TestStringFormat(t *testing.T) {
	p := Platform{OS: MacOS, Arch: Aarch64, Libc: System}
	assert.Equal(t, "macos-aarch64-system", p.String())
}
