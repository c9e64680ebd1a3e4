package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run isort, black, flake8, and mypy in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		l, err := linters(ctx)
		if err != nil {
			return err
		}
		return l.Lint(ctx)
	},
}

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Run the pytest suite",
	RunE:  runPytest,
}

var pytestCmd = &cobra.Command{
	Use:   "pytest",
	Short: "Run the pytest suite",
	RunE:  runPytest,
}

var installActCmd = &cobra.Command{
	Use:   "install-act",
	Short: "Download and run the act installer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Act().Install(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "act installed.")
		return nil
	},
}

var runActTestsCmd = &cobra.Command{
	Use:   "run-act-tests",
	Short: "Run the tests workflow job locally with act",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := env.Act()
		if err := a.Check(ctx); err != nil {
			return fmt.Errorf("%w%s", err, hints.ForMissingExecutable("act"))
		}
		return a.RunTests(ctx)
	},
}

func runPytest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l, err := linters(ctx)
	if err != nil {
		return err
	}
	return l.Pytest(ctx)
}

// linters binds the lint wrapper to the testing-image runner.
func linters(ctx context.Context) (*nbforge.Linters, error) {
	runner, err := env.TestsRunner(ctx)
	if err != nil {
		return nil, err
	}
	return env.Linters(runner), nil
}

// newToolCmd builds the command for one lint tool.
func newToolCmd(tool string) *cobra.Command {
	return &cobra.Command{
		Use:   tool,
		Short: "Run " + tool + " over the configured lint targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := linters(ctx)
			if err != nil {
				return err
			}
			return l.RunTool(ctx, tool)
		},
	}
}

func init() {
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(pytestCmd)
	rootCmd.AddCommand(newToolCmd("isort"))
	rootCmd.AddCommand(newToolCmd("black"))
	rootCmd.AddCommand(newToolCmd("flake8"))
	rootCmd.AddCommand(newToolCmd("mypy"))
	rootCmd.AddCommand(installActCmd)
	rootCmd.AddCommand(runActTestsCmd)
}
