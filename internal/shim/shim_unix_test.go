//go:build !windows

package shim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchSimpleSpawnReturnsExitCode(t *testing.T) {
	res, err := Launch(context.Background(), LaunchRequest{
		Executable: "/bin/sh",
		Args:       []string{"-c", "exit 7"},
		Mode:       ModeSimpleSpawn,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
}

func TestLaunchForkExecReturnsExitCode(t *testing.T) {
	res, err := Launch(context.Background(), LaunchRequest{
		Executable: "/bin/sh",
		Args:       []string{"-c", "exit 3"},
		Mode:       ModeForkExec,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestLaunchForkExecTranslatesSignalDeath(t *testing.T) {
	res, err := Launch(context.Background(), LaunchRequest{
		Executable: "/bin/sh",
		Args:       []string{"-c", "kill -TERM $$"},
		Mode:       ModeForkExec,
	})
	require.NoError(t, err)
	assert.Equal(t, 128+15, res.ExitCode)
}
