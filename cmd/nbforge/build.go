package main

import (
	"context"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
)

var buildJupyterCmd = &cobra.Command{
	Use:   "build-jupyter",
	Short: "Build the notebook-execution image",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		image, err := env.JupyterImage(ctx)
		if err != nil {
			return err
		}
		return buildImage(ctx, image, env.Config.Docker.JupyterDockerfile)
	},
}

var buildTestsCmd = &cobra.Command{
	Use:   "build-tests",
	Short: "Build the lint-and-test image",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		image, err := env.TestsImage(ctx)
		if err != nil {
			return err
		}
		return buildImage(ctx, image, env.Config.Docker.TestsDockerfile)
	},
}

// buildImage builds one project image from the working root. When pull
// is enabled the published image is fetched first to seed the layer
// cache; the registry may not carry this branch yet, so a failed pull
// is logged and the build proceeds.
func buildImage(ctx context.Context, image, dockerfile string) error {
	d := env.Docker()
	if env.Config.Docker.Pull {
		if err := d.Pull(ctx, image); err != nil {
			env.Log.Warn("pull failed, building from scratch", "image", image, "error", err)
		}
	}
	return d.Build(ctx, nbforge.BuildSpec{
		Image:      image,
		Dockerfile: dockerfile,
		Context:    ".",
		NoCache:    env.Config.Docker.NoCache,
	})
}

func init() {
	rootCmd.AddCommand(buildJupyterCmd)
	rootCmd.AddCommand(buildTestsCmd)
}
