// Package cmd is the acms command line entry point.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/bnema/acms/internal/adapters/in/cli"
	"github.com/bnema/acms/pkg/version"
)

// ExecuteCLI records build information and runs the root command.
func ExecuteCLI(build, commit, date string) {
	version.Set(build, commit, date)

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
