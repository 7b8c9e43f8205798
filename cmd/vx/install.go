package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/vx/internal/pipeline"
)

var installForce bool

var installCmd = &cobra.Command{
	Use:   "install <tool>[@version]...",
	Short: "Install one or more tools without running them",
	Long: `Install downloads, extracts, and verifies a tool at a specific or
resolved-latest version, without executing it afterward.

With --force, reinstalls even if the version is already present.

Examples:
  vx install node@20.10.0
  vx install uv go
  vx install node@20.10.0 --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		for _, spec := range args {
			name, version := splitToolVersion(spec)
			req := pipeline.ResolveRequest{RuntimeName: name, Version: version}
			cfg := pipeline.ExecutionConfig{AutoInstall: true, UseSystemPath: true, Force: installForce}

			plan, err := a.drv.Install(globalCtx, req, cfg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to install %s: %v\n", spec, err)
				exitWithCode(exitCodeFor(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s@%s\n", plan.Primary.Name, plan.Primary.Version())
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&installForce, "force", false, "Reinstall even if the version is already present")
}
