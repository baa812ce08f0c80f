// Command simpleconf loads and merges configuration sources and prints the
// result.
//
//	simpleconf show defaults.toml config.yaml env:APP_
//	simpleconf get server.port defaults.toml config.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	a := &app{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
