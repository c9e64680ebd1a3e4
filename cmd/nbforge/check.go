package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

var checkDockerCmd = &cobra.Command{
	Use:   "check-docker",
	Short: "Verify the docker executable is installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkTool(cmd.Context(), "docker")
	},
}

var checkImageJupyterCmd = &cobra.Command{
	Use:   "check-image-jupyter",
	Short: "Verify the Jupyter image exists locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkJupyterImage(cmd.Context())
	},
}

var checkImageTestsCmd = &cobra.Command{
	Use:   "check-image-tests",
	Short: "Verify the testing image exists locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkTestsImage(cmd.Context())
	},
}

var checkDockerImagesCmd = &cobra.Command{
	Use:   "check-docker-images",
	Short: "Verify both project images exist locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkJupyterImage(ctx); err != nil {
			return err
		}
		return checkTestsImage(ctx)
	},
}

var checkDepsJupyterCmd = &cobra.Command{
	Use:   "check-deps-jupyter",
	Short: "Run pip check against the Jupyter image",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkDepsJupyter(cmd.Context())
	},
}

var checkDepsTestsCmd = &cobra.Command{
	Use:   "check-deps-tests",
	Short: "Run pip check against the testing image",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkDepsTests(cmd.Context())
	},
}

var checkAllCmd = &cobra.Command{
	Use:   "check-all",
	Short: "Run every docker and dependency check",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkTool(ctx, "docker"); err != nil {
			return err
		}
		if err := checkJupyterImage(ctx); err != nil {
			return err
		}
		if err := checkTestsImage(ctx); err != nil {
			return err
		}
		if err := checkDepsJupyter(ctx); err != nil {
			return err
		}
		return checkDepsTests(ctx)
	},
}

var checkGitCmd = &cobra.Command{
	Use:   "check-git",
	Short: "Verify git is installed and the root is a work tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkTool(ctx, "git"); err != nil {
			return err
		}
		if err := env.Git().InsideWorkTree(ctx); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "Git work tree detected at %s\n", env.Root())
		return nil
	},
}

var checkRepoSafetyCmd = &cobra.Command{
	Use:   "check-repo-safety",
	Short: "Verify git accepts the repository's ownership",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Git().IsOwnershipSafe(cmd.Context()); err != nil {
			if errors.Is(err, nbforge.ErrUnsafeRepository) {
				return fmt.Errorf("%w%s", err, hints.ForDubiousOwnership(env.Root()))
			}
			return err
		}
		fmt.Fprintln(env.Stdout, "Repository ownership is safe.")
		return nil
	},
}

var safeRepositoryCmd = &cobra.Command{
	Use:   "safe-repository",
	Short: "Mark the working root as a safe git directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Git().MarkSafeDirectory(cmd.Context(), env.Root()); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "Marked %s as a safe git directory.\n", env.Root())
		return nil
	},
}

var checkActCmd = &cobra.Command{
	Use:   "check-act",
	Short: "Verify the act executable is installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkTool(cmd.Context(), "act")
	},
}

// checkTool verifies an executable is on PATH, then prints its version.
// The missing-executable sentinel carries an install hint.
func checkTool(ctx context.Context, name string) error {
	if err := nbforge.LookPath(name); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForMissingExecutable(name))
	}
	return env.Runner().Run(ctx, nbforge.Command{Name: name, Args: []string{"--version"}})
}

func checkJupyterImage(ctx context.Context) error {
	image, err := env.JupyterImage(ctx)
	if err != nil {
		return err
	}
	if err := env.Docker().ImageExists(ctx, image); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForMissingImage(image, "build-jupyter"))
	}
	fmt.Fprintf(env.Stdout, "Image found: %s\n", image)
	return nil
}

func checkTestsImage(ctx context.Context) error {
	image, err := env.TestsImage(ctx)
	if err != nil {
		return err
	}
	if err := env.Docker().ImageExists(ctx, image); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForMissingImage(image, "build-tests"))
	}
	fmt.Fprintf(env.Stdout, "Image found: %s\n", image)
	return nil
}

func checkDepsJupyter(ctx context.Context) error {
	runner, err := env.JupyterRunner(ctx)
	if err != nil {
		return err
	}
	return runner.Run(ctx, nbforge.Command{Name: "pip", Args: []string{"check"}})
}

func checkDepsTests(ctx context.Context) error {
	runner, err := env.TestsRunner(ctx)
	if err != nil {
		return err
	}
	return runner.Run(ctx, nbforge.Command{Name: "pip", Args: []string{"check"}})
}

func init() {
	rootCmd.AddCommand(checkDockerCmd)
	rootCmd.AddCommand(checkImageJupyterCmd)
	rootCmd.AddCommand(checkImageTestsCmd)
	rootCmd.AddCommand(checkDockerImagesCmd)
	rootCmd.AddCommand(checkDepsJupyterCmd)
	rootCmd.AddCommand(checkDepsTestsCmd)
	rootCmd.AddCommand(checkAllCmd)
	rootCmd.AddCommand(checkGitCmd)
	rootCmd.AddCommand(checkRepoSafetyCmd)
	rootCmd.AddCommand(safeRepositoryCmd)
	rootCmd.AddCommand(checkActCmd)
}
