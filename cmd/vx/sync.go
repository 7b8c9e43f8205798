package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/vx/internal/pipeline"
	"github.com/tsukumogami/vx/internal/store"
)

var syncCheck bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install every tool pinned in vx.toml and update the lockfile",
	Long: `Sync resolves every [tools] entry in vx.toml, installs whatever is
missing, records the result in vx.lock, and prunes lockfile entries for
tools no longer pinned.

With --check, sync reports what it would do without installing or
writing the lockfile, exiting non-zero if anything is out of sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		keep := make(map[string]bool, len(a.project.Tools))
		var outOfSync []string

		for name, spec := range a.project.Tools {
			if !spec.SupportsOS(runtime.GOOS) {
				continue
			}

			canonical := a.reg.Canonicalize(name)
			keep[canonical] = true
			for _, dep := range a.lock.Dependencies[canonical] {
				keep[dep] = true
			}

			locked, isLocked := a.lock.Tools[canonical]
			if isLocked && (spec.Version == "" || locked.Version == spec.Version || spec.Version == "latest") {
				continue
			}

			outOfSync = append(outOfSync, name)
			if syncCheck {
				continue
			}

			req := pipeline.ResolveRequest{RuntimeName: name, Version: spec.Version}
			cfg := pipeline.ExecutionConfig{AutoInstall: true, UseSystemPath: true}
			plan, err := a.drv.Install(globalCtx, req, cfg)
			if err != nil {
				return fmt.Errorf("sync %s: %w", name, err)
			}

			deps := make([]string, 0, len(plan.Dependencies))
			for _, d := range plan.Dependencies {
				deps = append(deps, d.Name)
				keep[d.Name] = true
			}
			a.lock.SetTool(plan.Primary.Name, store.LockedTool{
				Version: plan.Primary.Version(),
				Source:  "vx.toml",
			}, deps)
		}

		if syncCheck {
			if len(outOfSync) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "out of sync: %v\n", outOfSync)
				exitWithCode(ExitGeneral)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "up to date")
			return nil
		}

		removed := a.lock.Prune(keep)
		if err := a.lock.Save(); err != nil {
			return fmt.Errorf("write lockfile: %w", err)
		}
		if len(removed) > 0 {
			printInfo(fmt.Sprintf("removed from lockfile: %v", removed))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sync complete")
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncCheck, "check", false, "Report drift without installing or writing the lockfile")
}
