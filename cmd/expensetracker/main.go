// Package main is the entry point for the expensetracker CLI.
package main

import (
	"os"

	"expensetracker/cmd/expensetracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
