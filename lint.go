package nbforge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

// lintTools is the fixed lint sequence; the first failure stops the run.
var lintTools = []string{"isort", "black", "flake8", "mypy"}

// Linters builds the lint and test invocations run over the notebooks
// and test tree. The runner is expected to execute inside the testing
// image.
type Linters struct {
	Runner  Runner
	Paths   []string // lint targets, root-relative
	UseNbQA bool     // wrap tools with nbqa so notebooks are covered too
}

// ToolArgs returns the invocation for one lint tool over the configured
// targets, nbqa-wrapped when enabled.
func (l *Linters) ToolArgs(tool string) Command {
	if l.UseNbQA {
		return Command{Name: "nbqa", Args: append([]string{tool}, l.Paths...)}
	}
	return Command{Name: tool, Args: append([]string{}, l.Paths...)}
}

// PytestArgs returns the test suite invocation. The cache provider is
// disabled so containers leave no .pytest_cache in the mounted tree.
func (l *Linters) PytestArgs() Command {
	return Command{Name: "pytest", Args: []string{"-p", "no:cacheprovider"}}
}

// RunTool runs one lint tool.
func (l *Linters) RunTool(ctx context.Context, tool string) error {
	return l.Runner.Run(ctx, l.ToolArgs(tool))
}

// Pytest runs the test suite.
func (l *Linters) Pytest(ctx context.Context) error {
	return l.Runner.Run(ctx, l.PytestArgs())
}

// Lint runs isort, black, flake8, and mypy in order, stopping at the
// first failure.
func (l *Linters) Lint(ctx context.Context) error {
	for _, tool := range lintTools {
		if err := l.RunTool(ctx, tool); err != nil {
			return err
		}
	}
	return nil
}

// ActInstallURL is the upstream installer script for the act CLI.
const ActInstallURL = "https://raw.githubusercontent.com/nektos/act/master/install.sh"

// Act wraps the act CLI, which runs GitHub workflow jobs locally. act
// manages its own containers, so it runs on the host.
type Act struct {
	Runner     Runner
	Client     *http.Client // installer download; nil = http.DefaultClient
	InstallURL string       // installer location; empty = ActInstallURL
}

// Check verifies the act executable is reachable.
func (a *Act) Check(ctx context.Context) error {
	if _, err := a.Runner.Output(ctx, Command{Name: "act", Args: []string{"--version"}}); err != nil {
		return fmt.Errorf("%w: act", ErrExecutableNotFound)
	}
	return nil
}

// RunTests runs the repository's tests workflow job locally.
func (a *Act) RunTests(ctx context.Context) error {
	return a.Runner.Run(ctx, Command{Name: "act", Args: []string{"-j", "tests"}})
}

// Install downloads the upstream installer script and runs it with
// elevated rights, matching the documented act install procedure.
func (a *Act) Install(ctx context.Context) error {
	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := a.InstallURL
	if url == "" {
		url = ActInstallURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("fetching act installer: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching act installer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching act installer: unexpected status %s", resp.Status)
	}

	script, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetching act installer: %w", err)
	}

	path, cleanup, err := fileutil.WriteTempFile(script, "sh")
	if err != nil {
		return err
	}
	defer cleanup()

	cmd := Command{Name: "sudo", Args: []string{"bash", path}}
	if os.Getuid() == 0 {
		cmd = Command{Name: "bash", Args: []string{path}}
	}
	return a.Runner.Run(ctx, cmd)
}
