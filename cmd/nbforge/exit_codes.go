package main

import (
	"errors"
	"os/exec"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/config"
)

// Exit codes for the nbforge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess      = 0 // Task completed
	ExitGeneral      = 1 // General or external command failure
	ExitUsage        = 2 // Invalid flags or configuration
	ExitPrecondition = 3 // Missing executable, image, or work tree
	ExitDrift        = 4 // Drift check without build output
)

// errUsage marks command-line usage errors from flag parsing.
var errUsage = errors.New("invalid usage")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Drift reconciliation needs conversion output to compare against (exit 4)
	if errors.Is(err, nbforge.ErrNoBuildOutput) {
		return ExitDrift
	}

	// Precondition failures (exit 3)
	if errors.Is(err, nbforge.ErrExecutableNotFound) ||
		errors.Is(err, nbforge.ErrImageNotFound) ||
		errors.Is(err, nbforge.ErrNotAWorkTree) ||
		errors.Is(err, nbforge.ErrUnsafeRepository) ||
		errors.Is(err, nbforge.ErrNoContainers) {
		return ExitPrecondition
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, nbforge.ErrUnknownFormat) ||
		errors.Is(err, nbforge.ErrOutputCollision) ||
		errors.Is(err, nbforge.ErrBadRemoteURL) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrBadLogLevel) {
		return ExitUsage
	}

	// External command failures propagate the child's exit code
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}

	return ExitGeneral
}

// isConfigNotFound reports whether the error stems from a missing config file.
func isConfigNotFound(err error) bool {
	return errors.Is(err, config.ErrConfigNotFound)
}
