package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tools pinned in the lockfile",
	Long:  `List every tool recorded in vx.lock, with its locked version and source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if listJSON {
			type toolJSON struct {
				Name    string `json:"name"`
				Version string `json:"version"`
				Source  string `json:"source"`
			}
			tools := make([]toolJSON, 0, len(a.lock.Tools))
			for name, t := range a.lock.Tools {
				tools = append(tools, toolJSON{Name: name, Version: t.Version, Source: t.Source})
			}
			return printJSON(tools)
		}

		if len(a.lock.Tools) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tools locked. Run `vx sync` after adding entries to vx.toml.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Locked tools (%d total):\n\n", len(a.lock.Tools))
		for name, t := range a.lock.Tools {
			deps := a.lock.Dependencies[name]
			if len(deps) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s\n", name, t.Version)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s (deps: %v)\n", name, t.Version, deps)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
