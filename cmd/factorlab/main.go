package main

import (
	"os"

	"github.com/wonny/factorlab/cmd/factorlab/commands"
)

// main is the entry point for the factorlab CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
