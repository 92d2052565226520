// Package main provides the syncstate CLI for inspecting and maintaining
// synchronized-state snapshots.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
