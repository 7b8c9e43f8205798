package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// printInfo prints an informational message unless quiet mode is enabled.
func printInfo(a ...interface{}) {
	if !quietFlag {
		fmt.Println(a...)
	}
}

// printJSON marshals v to indented JSON on stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
