package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var cacheCleanDownloads bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage vx's caches",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear the exec-path cache",
	Long: `Clean clears the exec-path lookup cache, forcing the next invocation
of every tool to re-resolve its executable path.

With --downloads, also removes everything else under the vx cache
directory, including each runtime's cached fetch_versions result.
Downloaded archives are not kept there: the installer writes them to
the OS temp directory and deletes them after extraction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if err := os.Remove(a.cfg.ExecPathCacheFile()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear exec-path cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cleared exec-path cache")

		if cacheCleanDownloads {
			entries, err := os.ReadDir(a.cfg.CacheDir)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("list download cache: %w", err)
			}
			for _, e := range entries {
				if e.Name() == "exec-paths.bin" {
					continue
				}
				if err := os.RemoveAll(filepath.Join(a.cfg.CacheDir, e.Name())); err != nil {
					return fmt.Errorf("clear download cache entry %s: %w", e.Name(), err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleared download cache")
		}
		return nil
	},
}

func init() {
	cacheCleanCmd.Flags().BoolVar(&cacheCleanDownloads, "downloads", false, "Also clear the download cache")
	cacheCmd.AddCommand(cacheCleanCmd)
}
