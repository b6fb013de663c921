package main

import (
	"os"

	"github.com/garyjia/billed/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
