// Package main is the stockboard entry point: the inventory API server and
// its terminal dashboard client.
package main

import (
	"fmt"
	"os"

	"github.com/R3E-Network/stockboard/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "stockboard: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
