package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <tool>@<version>",
	Short: "Remove an installed tool's install tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		name, version := splitToolVersion(args[0])
		if version == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "uninstall requires an explicit version, e.g. %s@1.2.3\n", name)
			exitWithCode(ExitUsage)
		}
		canonical := a.reg.Canonicalize(name)

		if !a.st.IsInstalled(canonical, version) {
			return fmt.Errorf("%s@%s is not installed", canonical, version)
		}
		installDir := a.st.InstallDir(canonical, version)
		if err := a.st.Remove(canonical, version); err != nil {
			return fmt.Errorf("uninstall %s@%s: %w", canonical, version, err)
		}
		if a.execCache != nil {
			if err := a.execCache.InvalidateRuntime(installDir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to invalidate exec-path cache: %v\n", err)
			}
		}

		keep := make(map[string]bool, len(a.lock.Tools))
		for toolName := range a.lock.Tools {
			if toolName != canonical {
				keep[toolName] = true
			}
		}
		a.lock.Prune(keep)
		if err := a.lock.Save(); err != nil {
			return fmt.Errorf("update lockfile after uninstall: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "uninstalled %s@%s\n", canonical, version)
		return nil
	},
}
