// Package shim implements the process launcher that runs an installed
// tool's executable on the driver's behalf, matching the signal and
// exit-code contract of spec §4.6: the parent's exit code equals the
// child's (or 128+signum on Unix signal death), and Ctrl-C/SIGTERM
// reach the child rather than the parent.
package shim

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Mode selects between the two Unix launch strategies from spec §4.6.
// Windows always uses the console-control-handler strategy regardless
// of Mode.
type Mode string

const (
	// ModeForkExec starts the child in its own process group, catches
	// SIGINT (absorbed) and SIGTERM (forwarded to the child's group) in
	// the parent, and waits for the child, translating signal death
	// into 128+sig.
	ModeForkExec Mode = "fork-exec"
	// ModeSimpleSpawn is a plain spawn+wait, used when signal fidelity
	// isn't required (e.g. capturing output for a non-interactive run).
	ModeSimpleSpawn Mode = "simple-spawn"
)

// SignalHandling configures how a standalone shim forwards signals to
// its target, parsed from the TOML sidecar file.
type SignalHandling struct {
	ForwardSignals bool `toml:"forward_signals"`
	IgnoreSigint   bool `toml:"ignore_sigint"`
	KillOnExit     bool `toml:"kill_on_exit"`
}

// Config is the TOML sidecar <tool>.shim written next to each shim
// binary under ~/.vx/shims/.
type Config struct {
	Path           string            `toml:"path"`
	Args           []string          `toml:"args,omitempty"`
	WorkingDir     string            `toml:"working_dir,omitempty"`
	Env            map[string]string `toml:"env,omitempty"`
	HideConsole    bool              `toml:"hide_console,omitempty"`
	RunAsAdmin     bool              `toml:"run_as_admin,omitempty"`
	SignalHandling SignalHandling    `toml:"signal_handling,omitempty"`
}

// LoadConfig reads a shim sidecar file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse shim config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the shim sidecar file atomically.
func (c *Config) Save(path string) error {
	tmp, err := os.CreateTemp("", ".vx-shim-*.toml")
	if err != nil {
		return fmt.Errorf("create temp shim config: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("encode shim config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// LaunchRequest is what the shim executor needs to start a child
// process: the resolved executable, its arguments, environment, and
// working directory — i.e. the content of a pipeline.PreparedExecution
// without importing the pipeline package, so the two can evolve
// independently of each other's error types.
type LaunchRequest struct {
	Executable  string
	Args        []string
	Env         []string
	WorkingDir  string
	Mode        Mode
	Timeout     time.Duration
	HideConsole bool // Windows-only: spawn with the no-window creation flag
}

// Result is what Launch returns: the exit code the parent should
// itself exit with.
type Result struct {
	ExitCode int
}
