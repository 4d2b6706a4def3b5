package main

import (
	"os"

	"github.com/bagdasarian/campus-teams/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
