// Package main provides the gradbook CLI.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/gradbook/internal/cli"
)

const version = "v0.1.0"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
