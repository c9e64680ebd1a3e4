package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nbforge version",
	// Runs before environment setup, so it works outside a repository.
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Fprintf(os.Stdout, "nbforge %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
