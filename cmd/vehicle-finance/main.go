package main

import (
	"os"

	"github.com/iwvelando/vehicle-finance/cmd/vehicle-finance/cmd"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cmd.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
