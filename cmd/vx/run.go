package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/vx/internal/pipeline"
)

// runTool implements `vx <tool> [args...]`: resolve tool, execute,
// exit code is the tool's own (spec §6).
func runTool(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	toolSpec, toolArgs := args[0], args[1:]
	name, version := splitToolVersion(toolSpec)

	a, err := newApp()
	if err != nil {
		return err
	}

	req := pipeline.ResolveRequest{
		RuntimeName: name,
		Version:     version,
		Args:        toolArgs,
	}
	cfg := pipeline.ExecutionConfig{
		AutoInstall:   a.project.Settings.AutoInstall,
		UseSystemPath: true,
		Env:           a.project.Env,
	}

	code, err := a.drv.Run(globalCtx, req, cfg)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		exitWithCode(exitCodeFor(err))
	}
	exitWithCode(code)
	return nil
}

// splitToolVersion parses "node@20.10.0" into ("node", "20.10.0"); a
// bare "node" returns ("node", "").
func splitToolVersion(spec string) (name, version string) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '@' {
			return spec[:i], spec[i+1:]
		}
	}
	return spec, ""
}
