// Package lifecycle implements the install-tree mutation hooks from
// spec §4.5: an ordered action list per lifecycle event, executed
// against an install directory.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Slot names the eight lifecycle events a runtime may hook.
type Slot string

const (
	PreInstall    Slot = "pre_install"
	PostInstall   Slot = "post_install"
	PreUninstall  Slot = "pre_uninstall"
	PostUninstall Slot = "post_uninstall"
	PreUpdate     Slot = "pre_update"
	PostUpdate    Slot = "post_update"
	PreSwitch     Slot = "pre_switch"
	PostSwitch    Slot = "post_switch"
)

// Hooks holds the ordered action list for each of the eight slots.
type Hooks struct {
	PreInstall    []Action
	PostInstall   []Action
	PreUninstall  []Action
	PostUninstall []Action
	PreUpdate     []Action
	PostUpdate    []Action
	PreSwitch     []Action
	PostSwitch    []Action
}

// Get returns the action list bound to slot.
func (h Hooks) Get(slot Slot) []Action {
	switch slot {
	case PreInstall:
		return h.PreInstall
	case PostInstall:
		return h.PostInstall
	case PreUninstall:
		return h.PreUninstall
	case PostUninstall:
		return h.PostUninstall
	case PreUpdate:
		return h.PreUpdate
	case PostUpdate:
		return h.PostUpdate
	case PreSwitch:
		return h.PreSwitch
	case PostSwitch:
		return h.PostSwitch
	default:
		return nil
	}
}

// Action is one lifecycle step. Exactly one of the typed fields is
// populated, matching which variant this action represents; Kind
// selects which one Run dispatches to.
type Action struct {
	Kind                 ActionKind
	FlattenDirectory     *FlattenDirectoryParams
	CreateDirectory      *CreateDirectoryParams
	RemoveFiles          *RemoveFilesParams
	SetExecutable        *SetExecutableParams
	CreateConfig         *CreateConfigParams
	ValidateInstallation *ValidateInstallationParams
	HealthCheck          *HealthCheckParams
	CleanupTemp          *CleanupTempParams
}

type ActionKind string

const (
	KindFlattenDirectory     ActionKind = "flatten_directory"
	KindCreateDirectory      ActionKind = "create_directory"
	KindRemoveFiles          ActionKind = "remove_files"
	KindSetExecutable        ActionKind = "set_executable"
	KindCreateConfig         ActionKind = "create_config"
	KindValidateInstallation ActionKind = "validate_installation"
	KindHealthCheck          ActionKind = "health_check"
	KindCleanupTemp          ActionKind = "cleanup_temp"
)

type FlattenDirectoryParams struct{ SourcePattern string }
type CreateDirectoryParams struct{ Path string }
type RemoveFilesParams struct{ Pattern string }
type SetExecutableParams struct{ Path string }
type CreateConfigParams struct{ Path, Content string }
type ValidateInstallationParams struct {
	Command        string
	ExpectedOutput string
}
type HealthCheckParams struct {
	Command             string
	ExpectedExitCode    int
	HasExpectedExitCode bool
}
type CleanupTempParams struct{ Pattern string }

// Run executes every action in order against installDir, stopping at
// the first failure. Callers implementing the post-install rollback
// requirement from spec §4.5 should remove installDir entirely on a
// non-nil return.
func Run(ctx context.Context, actions []Action, installDir string) error {
	for _, a := range actions {
		if err := runOne(ctx, a, installDir); err != nil {
			return fmt.Errorf("lifecycle action %s: %w", a.Kind, err)
		}
	}
	return nil
}

func runOne(ctx context.Context, a Action, installDir string) error {
	switch a.Kind {
	case KindFlattenDirectory:
		return flattenDirectory(installDir, a.FlattenDirectory.SourcePattern)
	case KindCreateDirectory:
		return os.MkdirAll(filepath.Join(installDir, a.CreateDirectory.Path), 0o755)
	case KindRemoveFiles:
		return removeFiles(installDir, a.RemoveFiles.Pattern)
	case KindSetExecutable:
		return os.Chmod(filepath.Join(installDir, a.SetExecutable.Path), 0o755)
	case KindCreateConfig:
		return createConfig(installDir, a.CreateConfig.Path, a.CreateConfig.Content)
	case KindValidateInstallation:
		return validateInstallation(ctx, installDir, a.ValidateInstallation)
	case KindHealthCheck:
		return healthCheck(ctx, installDir, a.HealthCheck)
	case KindCleanupTemp:
		return removeFiles(installDir, a.CleanupTemp.Pattern)
	default:
		return fmt.Errorf("unknown lifecycle action kind %q", a.Kind)
	}
}

// flattenDirectory moves everything from installDir/sourcePattern/* up
// one level and removes the now-empty subdirectory, for archives that
// extract into a version-named top-level directory.
func flattenDirectory(installDir, sourcePattern string) error {
	matches, err := filepath.Glob(filepath.Join(installDir, sourcePattern))
	if err != nil {
		return fmt.Errorf("glob %s: %w", sourcePattern, err)
	}
	for _, src := range matches {
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			continue
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return fmt.Errorf("read %s: %w", src, err)
		}
		for _, e := range entries {
			oldPath := filepath.Join(src, e.Name())
			newPath := filepath.Join(installDir, e.Name())
			if err := os.Rename(oldPath, newPath); err != nil {
				return fmt.Errorf("move %s to %s: %w", oldPath, newPath, err)
			}
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove flattened directory %s: %w", src, err)
		}
	}
	return nil
}

func removeFiles(installDir, pattern string) error {
	matches, err := filepath.Glob(filepath.Join(installDir, pattern))
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			return fmt.Errorf("remove %s: %w", m, err)
		}
	}
	return nil
}

func createConfig(installDir, path, content string) error {
	target := filepath.Join(installDir, path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", target, err)
	}
	return os.WriteFile(target, []byte(content), 0o644)
}

func validateInstallation(ctx context.Context, installDir string, p *ValidateInstallationParams) error {
	out, err := runInInstallDir(ctx, installDir, p.Command)
	if err != nil {
		return fmt.Errorf("run %q: %w", p.Command, err)
	}
	if p.ExpectedOutput != "" && !strings.Contains(out, p.ExpectedOutput) {
		return fmt.Errorf("output of %q did not contain %q", p.Command, p.ExpectedOutput)
	}
	return nil
}

func healthCheck(ctx context.Context, installDir string, p *HealthCheckParams) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", p.Command)
	cmd.Dir = installDir
	err := cmd.Run()
	if !p.HasExpectedExitCode {
		return err
	}
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return err
	}
	if exitCode != p.ExpectedExitCode {
		return fmt.Errorf("health check %q exited %d, want %d", p.Command, exitCode, p.ExpectedExitCode)
	}
	return nil
}

func runInInstallDir(ctx context.Context, installDir, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = installDir
	out, err := cmd.Output()
	return string(out), err
}
