package main

import (
	"os"

	"github.com/tallybook-dev/tallybook/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
