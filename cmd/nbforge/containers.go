package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
)

var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "Print the recorded container IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := env.Containers().Record.Read()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(env.Stdout, "No containers recorded.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(env.Stdout, id)
		}
		return nil
	},
}

var listContainersCmd = &cobra.Command{
	Use:   "list-containers",
	Short: "List running containers started from the project images",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jupyter, err := env.JupyterImage(ctx)
		if err != nil {
			return err
		}
		tests, err := env.TestsImage(ctx)
		if err != nil {
			return err
		}
		return env.Docker().PS(ctx, "ancestor="+jupyter, "ancestor="+tests)
	},
}

var stopContainersCmd = &cobra.Command{
	Use:   "stop-containers",
	Short: "Stop every recorded container",
	RunE: func(cmd *cobra.Command, args []string) error {
		stopped, err := env.Containers().StopAll(cmd.Context())
		for _, id := range stopped {
			fmt.Fprintf(env.Stdout, "Stopped %s\n", shortID(id))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "All containers stopped.")
		return nil
	},
}

var restartContainersCmd = &cobra.Command{
	Use:   "restart-containers",
	Short: "Stop every recorded container and start Jupyter Lab again",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stopped, err := env.Containers().StopAll(ctx)
		for _, id := range stopped {
			fmt.Fprintf(env.Stdout, "Stopped %s\n", shortID(id))
		}
		// Nothing running is fine for a restart.
		if err != nil && !errors.Is(err, nbforge.ErrNoContainers) {
			return err
		}
		return startJupyter(ctx)
	},
}

func init() {
	rootCmd.AddCommand(containersCmd)
	rootCmd.AddCommand(listContainersCmd)
	rootCmd.AddCommand(stopContainersCmd)
	rootCmd.AddCommand(restartContainersCmd)
}
