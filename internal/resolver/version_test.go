package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersionsOrdering(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2", "1.2.0", 0},
		{"1.2.10", "1.2.9", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-dev", "1.0.0-rc", -1},
		{"1.0.0-rc", "1.0.0-rc1", -1},
		{"1.0.0-rc1", "1.0.0-rc2", -1},
		{"1.0.0-rc2", "1.0.0", -1},
		{"1.0.0-dev", "1.0.0", -1},
		{"v1.2.3", "1.2.3", 0},
	}
	for _, c := range cases {
		got := CompareVersions(c.a, c.b)
		assert.Equalf(t, c.want, got, "CompareVersions(%q, %q)", c.a, c.b)
		assert.Equal(t, -c.want, CompareVersions(c.b, c.a), "comparison should be antisymmetric")
	}
}

func TestCompareVersionsMissingComponentsTreatedAsZero(t *testing.T) {
	assert.Equal(t, 0, CompareVersions("1", "1.0.0"))
	assert.Equal(t, -1, CompareVersions("1.2", "1.2.1"))
}
