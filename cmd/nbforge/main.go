package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// A .env in the working directory feeds the same variables the
	// Makefile-era workflow exported. Missing files are fine.
	_ = godotenv.Load()

	// GOMAXPROCS adjustments are only worth printing under --verbose,
	// which cobra has not parsed yet at this point.
	logger := func(string, ...interface{}) {}
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			logger = func(format string, args ...interface{}) {
				fmt.Fprintf(os.Stderr, format+"\n", args...)
			}
			break
		}
	}
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(logger))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

// run executes the root command and maps the outcome to an exit code.
func run(ctx context.Context, stderr *os.File) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
