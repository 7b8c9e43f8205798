package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the vx environment is configured correctly",
	Long: `Doctor verifies that vx's environment is healthy: the base directory
exists, shims are on PATH, the lockfile is either absent or can be
stat'ed, and the registry's dependency graph has no cycles.

Exits with a non-zero status if any check fails, making it suitable as
a CI gate:

  vx doctor || exit 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return fmt.Errorf("failed to build vx environment: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Checking vx environment...")
		failed := false
		check := func(label string, ok bool, remediation string) {
			status := color.GreenString("ok")
			if !ok {
				status = color.RedString("FAIL")
				failed = true
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-28s ... %s\n", label, status)
			if !ok && remediation != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "    %s\n", remediation)
			}
		}

		info, statErr := os.Stat(a.cfg.BaseDir)
		check("base directory exists", statErr == nil && info.IsDir(), fmt.Sprintf("run any `vx install` to create %s", a.cfg.BaseDir))

		shimsOnPath := false
		for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
			if abs, _ := filepath.Abs(dir); abs == a.cfg.ShimsDir {
				shimsOnPath = true
				break
			}
		}
		check("shims directory on PATH", shimsOnPath, fmt.Sprintf("add %s to PATH", a.cfg.ShimsDir))

		_, lockErr := os.Stat(a.cfg.LockFilePath())
		check("lockfile readable", lockErr == nil || os.IsNotExist(lockErr), "vx.lock exists but could not be read")

		if err := a.reg.ValidateNoCycles(); err != nil {
			check("registry dependency graph acyclic", false, err.Error())
		} else {
			check("registry dependency graph acyclic", true, "")
		}

		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}
