package main

import (
	"os"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/cmd"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		os.Exit(1)
	}
}
