package main

import "os"

// Exit codes per spec §6: a fixed, small set a calling script can
// branch on, distinct from the teacher's own larger exit-code table.
const (
	ExitSuccess       = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitNotExecutable = 126
	ExitNotFound      = 127
	ExitSignalBase    = 128
	ExitInterrupted   = 130
)

func exitWithCode(code int) {
	os.Exit(code)
}
