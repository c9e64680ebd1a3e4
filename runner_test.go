package nbforge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakeRunner records every command and answers from scripted outputs
// and failures, matched by substring against the command string.
type fakeRunner struct {
	mu       sync.Mutex
	commands []Command
	outputs  map[string]string
	failures map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs:  make(map[string]string),
		failures: make(map[string]error),
	}
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) error {
	f.record(cmd)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.errFor(cmd)
}

func (f *fakeRunner) Output(ctx context.Context, cmd Command) (string, error) {
	f.record(cmd)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.errFor(cmd); err != nil {
		return "", err
	}
	return f.outputFor(cmd), nil
}

func (f *fakeRunner) record(cmd Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
}

func (f *fakeRunner) errFor(cmd Command) error {
	s := cmd.String()
	for pattern, err := range f.failures {
		if strings.Contains(s, pattern) {
			return err
		}
	}
	return nil
}

func (f *fakeRunner) outputFor(cmd Command) string {
	s := cmd.String()
	for pattern, out := range f.outputs {
		if strings.Contains(s, pattern) {
			return out
		}
	}
	return ""
}

// ran returns the recorded command strings in order.
func (f *fakeRunner) ran() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, cmd := range f.commands {
		out[i] = cmd.String()
	}
	return out
}

// ranMatching counts recorded commands containing the pattern.
func (f *fakeRunner) ranMatching(pattern string) int {
	n := 0
	for _, s := range f.ran() {
		if strings.Contains(s, pattern) {
			n++
		}
	}
	return n
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "bare executable",
			cmd:  Command{Name: "docker"},
			want: "docker",
		},
		{
			name: "with arguments",
			cmd:  Command{Name: "git", Args: []string{"push", "origin", "main"}},
			want: "git push origin main",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.cmd.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookPath(t *testing.T) {
	t.Parallel()

	err := LookPath("nbforge-test-no-such-binary")
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("LookPath() error = %v, want ErrExecutableNotFound", err)
	}
}
