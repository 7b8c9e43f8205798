package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/vx/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

// globalCtx is canceled on SIGINT/SIGTERM; the driver's Execute stage
// threads it through to the child process launch.
var globalCtx context.Context
var globalCancel context.CancelFunc

var rootCmd = &cobra.Command{
	Use:   "vx <tool> [args...]",
	Short: "vx resolves, installs, and runs pinned versions of developer tools",
	Long: `vx is a polyglot developer-tool version manager. It resolves, downloads,
installs, and executes specific versions of language runtimes and CLI
tools per-project, isolated from the host.

Run a pinned tool directly:
  vx node --version
  vx go version

Or manage the install store explicitly:
  vx install node@20.10.0
  vx list
  vx sync`,
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	RunE:               runTool,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) { initLogger() }

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		globalCancel()
		<-sigChan
		fmt.Fprintln(os.Stderr, "Forced exit")
		exitWithCode(ExitInterrupted)
	}()

	// DisableFlagParsing on root means cobra never sees --quiet/-v/--debug
	// for the "run a tool" path, since those flags belong to the tool
	// being invoked, not to vx. Subcommands re-enable flag parsing.
	initLogger()

	if err := rootCmd.Execute(); err != nil {
		if globalCtx.Err() == context.Canceled {
			exitWithCode(ExitInterrupted)
		}
		fmt.Fprintln(os.Stderr, err)
		exitWithCode(exitCodeFor(err))
	}
}

func initLogger() {
	level := determineLogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log.SetDefault(log.New(handler))
}

func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if quietFlag {
		return slog.LevelError
	}
	if isTruthy(os.Getenv("VX_DEBUG")) {
		return slog.LevelDebug
	}
	if isTruthy(os.Getenv("VX_VERBOSE")) {
		return slog.LevelInfo
	}
	if isTruthy(os.Getenv("VX_QUIET")) {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
