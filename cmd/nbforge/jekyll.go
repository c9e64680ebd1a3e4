package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/littlemissdragon/nbforge/internal/hints"
)

var jekyllCmd = &cobra.Command{
	Use:   "jekyll",
	Short: "Start the Jekyll development server container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		image, err := env.TestsImage(ctx)
		if err != nil {
			return err
		}
		if err := env.Docker().ImageExists(ctx, image); err != nil {
			return fmt.Errorf("%w%s", err, hints.ForMissingImage(image, "build-tests"))
		}

		spec, err := env.ContainerBase(ctx, image)
		if err != nil {
			return err
		}
		spec.Interactive = false
		spec.Remove = true
		port := env.Config.Jekyll.Port
		spec.Ports = []string{fmt.Sprintf("%d:%d", port, port)}
		spec.Command = env.Jekyll().ServeCommand()

		id, err := env.Containers().Start(ctx, spec)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "Started Jekyll container %s\n", shortID(id))
		fmt.Fprintf(env.Stdout, "Site will be available at http://localhost:%d once the build finishes.\n", port)
		return nil
	},
}

var buildSiteCmd = &cobra.Command{
	Use:   "build-site",
	Short: "Build the static site into the site directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runner, err := env.TestsRunner(ctx)
		if err != nil {
			return err
		}
		j := env.Jekyll()
		j.Runner = runner
		return j.Build(ctx)
	},
}

var clearJekyllCmd = &cobra.Command{
	Use:   "clear-jekyll",
	Short: "Remove the built site and Jekyll caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Jekyll().Clean(); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "Jekyll artifacts removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jekyllCmd)
	rootCmd.AddCommand(buildSiteCmd)
	rootCmd.AddCommand(clearJekyllCmd)
}
