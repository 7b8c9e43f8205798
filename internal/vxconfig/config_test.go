package vxconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHonorsBaseDirOverride(t *testing.T) {
	t.Setenv(EnvBaseDir, "/tmp/vx-test-base")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vx-test-base", cfg.BaseDir)
	assert.Equal(t, filepath.Join("/tmp/vx-test-base", "tools"), cfg.ToolsDir)
	assert.Equal(t, filepath.Join("/tmp/vx-test-base", "cache"), cfg.CacheDir)
}

func TestLoadHonorsIndividualOverrides(t *testing.T) {
	t.Setenv(EnvBaseDir, "/tmp/vx-test-base")
	t.Setenv(EnvToolsDir, "/tmp/vx-custom-tools")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vx-custom-tools", cfg.ToolsDir)
}

func TestToolDirLayout(t *testing.T) {
	cfg := &Config{ToolsDir: "/base/tools"}
	assert.Equal(t, filepath.Join("/base/tools", "node", "20.10.0"), cfg.ToolDir("node", "20.10.0"))
	assert.Equal(t, filepath.Join("/base/tools", "node", "20.10.0", "bin"), cfg.ToolBinDir("node", "20.10.0"))
}

func TestPackageDirLayout(t *testing.T) {
	cfg := &Config{ToolsDir: "/base/tools"}
	assert.Equal(t, filepath.Join("/base/tools", "npm", "release-please", "16.0.0"), cfg.PackageDir("npm", "release-please", "16.0.0"))
}
