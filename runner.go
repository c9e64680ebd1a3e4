package nbforge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external invocation as an argv slice. Commands
// are built by typed methods and never pass through a shell, so paths
// and user input need no quoting.
type Command struct {
	Name        string   // executable name or path
	Args        []string // arguments, in order
	Dir         string   // working directory (empty = runner default)
	Env         []string // extra KEY=VALUE entries appended to the environment
	Interactive bool     // attach the caller's stdin (terminal sessions)
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes external commands. Implementations decide where a
// command runs: ExecRunner on the host, ContainerRunner inside docker.
type Runner interface {
	// Run executes the command, streaming output to the runner's writers.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands on the host via os/exec.
type ExecRunner struct {
	Dir    string // default working directory for commands without one
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader // attached when a command is Interactive
}

// NewExecRunner returns a runner wired to the process streams, running
// commands from the given directory.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	}
}

// Run executes the command, streaming output as it arrives.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	c := r.build(ctx, cmd)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	if cmd.Interactive {
		c.Stdin = r.Stdin
	}
	if err := c.Run(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd.String(), err)
	}
	return nil
}

// Output executes the command and captures stdout. Stderr is captured
// into the error so callers can match on diagnostic text.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) (string, error) {
	c := r.build(ctx, cmd)
	out, err := c.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			return "", fmt.Errorf("%w: %s: %s: %w", ErrCommandFailed, cmd.String(), stderr, err)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd.String(), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *ExecRunner) build(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if c.Dir == "" {
		c.Dir = r.Dir
	}
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	return c
}

// LookPath reports whether an executable is available on PATH.
func LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}
	return nil
}
