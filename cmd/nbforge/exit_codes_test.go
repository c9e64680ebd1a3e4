package main

// Notes:
// - exitCodeFor: we test all sentinel errors from nbforge and config
//   packages, plus wrapped errors to verify errors.Is() chain works.
// - Child exit propagation is tested with a real process because
//   exec.ExitError cannot be constructed by hand.
// - Exit code constants: we verify Unix conventions (0=success,
//   1=general, 2=usage) and custom codes are below 126.

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"testing"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Drift without build output (exit 4)
		{"no build output", nbforge.ErrNoBuildOutput, ExitDrift},
		{"wrapped no build output", fmt.Errorf("checking: %w", nbforge.ErrNoBuildOutput), ExitDrift},

		// Precondition failures (exit 3)
		{"executable not found", nbforge.ErrExecutableNotFound, ExitPrecondition},
		{"image not found", nbforge.ErrImageNotFound, ExitPrecondition},
		{"not a work tree", nbforge.ErrNotAWorkTree, ExitPrecondition},
		{"unsafe repository", nbforge.ErrUnsafeRepository, ExitPrecondition},
		{"no containers", nbforge.ErrNoContainers, ExitPrecondition},
		{"wrapped image not found", fmt.Errorf("checking: %w", nbforge.ErrImageNotFound), ExitPrecondition},

		// Usage/config/validation errors (exit 2)
		{"usage", errUsage, ExitUsage},
		{"unknown format", nbforge.ErrUnknownFormat, ExitUsage},
		{"output collision", nbforge.ErrOutputCollision, ExitUsage},
		{"bad remote url", nbforge.ErrBadRemoteURL, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"bad log level", config.ErrBadLogLevel, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
		{"command failed", nbforge.ErrCommandFailed, ExitGeneral},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeForChildExit - Child process code propagation
// ---------------------------------------------------------------------------

func TestExitCodeForChildExit(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	err := exec.Command("sh", "-c", "exit 7").Run()
	if err == nil {
		t.Fatal("expected child to fail")
	}

	if got := exitCodeFor(err); got != 7 {
		t.Errorf("exitCodeFor(child exit 7) = %d, want 7", got)
	}

	wrapped := fmt.Errorf("running tests: %w", err)
	if got := exitCodeFor(wrapped); got != 7 {
		t.Errorf("exitCodeFor(wrapped child exit 7) = %d, want 7", got)
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix convention compliance
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	if ExitPrecondition >= 126 {
		t.Errorf("ExitPrecondition = %d, should be < 126", ExitPrecondition)
	}
	if ExitDrift >= 126 {
		t.Errorf("ExitDrift = %d, should be < 126", ExitDrift)
	}
}
