package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/fuzz/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// violations were already reported
		if !errors.Is(err, cmd.ErrCheckFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
