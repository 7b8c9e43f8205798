//go:build windows

package shim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// ctrlHandler returning true tells Windows the signal was handled, so
// it does not also terminate this process; the child, sharing our
// console, receives the Ctrl+C event on its own and decides its own
// fate (spec §4.6, "Windows strategy").
func ctrlHandler(ctrlType uint32) uintptr {
	return 1
}

// Launch spawns the child with inherited console handles and installs
// a console-control handler for the duration of the wait.
func Launch(ctx context.Context, req LaunchRequest) (Result, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Executable, req.Args...)
	cmd.Dir = req.WorkingDir
	cmd.Env = req.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if req.HideConsole {
		cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NO_WINDOW}
	}

	handle := windows.NewCallback(ctrlHandler)
	if err := windows.SetConsoleCtrlHandler(handle, true); err == nil {
		defer windows.SetConsoleCtrlHandler(handle, false)
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return Result{ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{}, fmt.Errorf("spawn %s: %w", req.Executable, err)
	}
	return Result{ExitCode: cmd.ProcessState.ExitCode()}, nil
}
