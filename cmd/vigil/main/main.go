package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/vigil-dev/vigil/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
