package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

var jupyterCmd = &cobra.Command{
	Use:   "jupyter",
	Short: "Start the Jupyter Lab container and print its URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startJupyter(cmd.Context())
	},
}

// startJupyter launches the Lab container detached, records it, waits
// for the server to come up, and prints the token URL.
func startJupyter(ctx context.Context) error {
	image, err := env.JupyterImage(ctx)
	if err != nil {
		return err
	}
	if err := env.Docker().ImageExists(ctx, image); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForMissingImage(image, "build-jupyter"))
	}

	spec, err := env.ContainerBase(ctx, image)
	if err != nil {
		return err
	}
	spec.Interactive = false
	spec.Remove = true
	port := env.Config.Jupyter.Port
	spec.Ports = []string{fmt.Sprintf("%d:%d", port, port)}

	id, err := env.Containers().Start(ctx, spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Started Jupyter container %s\n", shortID(id))

	// The server needs a moment before the token URL shows up in its
	// logs.
	fmt.Fprintf(env.Stdout, "Pausing for %d seconds...\n", env.Config.PauseSeconds)
	if err := env.Pause(ctx); err != nil {
		return err
	}

	url, err := labURL(ctx, id)
	if err != nil {
		return err
	}
	if url == "" {
		fmt.Fprintln(env.Stdout, "Jupyter Lab is still starting; run 'nbforge address' in a moment.")
		return nil
	}
	fmt.Fprintln(env.Stdout, url)
	return nil
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Wait the configured number of seconds",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(env.Stdout, "Pausing for %d seconds...\n", env.Config.PauseSeconds)
		return env.Pause(cmd.Context())
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the running Jupyter Lab URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ids, err := env.Containers().Record.Read()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nbforge.ErrNoContainers
		}

		for _, id := range ids {
			url, err := labURL(ctx, id)
			if err != nil {
				// The record may hold non-Jupyter containers or ones
				// that already exited; keep looking.
				continue
			}
			if url != "" {
				fmt.Fprintln(env.Stdout, url)
				return nil
			}
		}
		return errors.New("no Jupyter Lab URL in container logs; the server may still be starting")
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive bash shell in the Jupyter container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		image, err := env.JupyterImage(ctx)
		if err != nil {
			return err
		}
		if err := env.Docker().ImageExists(ctx, image); err != nil {
			return fmt.Errorf("%w%s", err, hints.ForMissingImage(image, "build-jupyter"))
		}

		spec, err := env.ContainerBase(ctx, image)
		if err != nil {
			return err
		}
		spec.Remove = true
		spec.Command = []string{"bash"}
		return env.Docker().Run(ctx, spec)
	},
}

// labURL extracts the Lab URL from one container's logs.
func labURL(ctx context.Context, id string) (string, error) {
	logs, err := env.Docker().Logs(ctx, id)
	if err != nil {
		return "", err
	}
	return nbforge.FindLabURL(logs, env.Config.Jupyter.Port), nil
}

// shortID abbreviates a container ID the way docker ps does.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func init() {
	rootCmd.AddCommand(jupyterCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(shellCmd)
}
