package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
)

var clearOutputCmd = &cobra.Command{
	Use:   "clear-output",
	Short: "Delete the conversion build output",
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearOutput()
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the build output and Jekyll artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearOutput(); err != nil {
			return err
		}
		if err := env.Jekyll().Clean(); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "Clean complete.")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Stop containers, unsync the site tree, and clear all outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		stopped, err := env.Containers().StopAll(ctx)
		for _, id := range stopped {
			fmt.Fprintf(env.Stdout, "Stopped %s\n", shortID(id))
		}
		// Nothing running is fine for a reset.
		if err != nil && !errors.Is(err, nbforge.ErrNoContainers) {
			return err
		}

		// With no build output there is nothing to derive removals
		// from; the site tree stays as committed.
		if err := env.Syncer().Unsync(); err != nil && !errors.Is(err, nbforge.ErrNoBuildOutput) {
			return err
		}

		if err := clearOutput(); err != nil {
			return err
		}
		if err := env.Jekyll().Clean(); err != nil {
			return err
		}

		notebooks, err := env.Notebooks()
		if err != nil {
			return err
		}
		if len(notebooks) > 0 {
			conv, err := env.Converter(ctx)
			if err != nil {
				return err
			}
			report := conv.ClearAll(ctx, notebooks)
			printBatch(report, "clear")
			if err := report.Err(); err != nil {
				return err
			}
		}

		fmt.Fprintln(env.Stdout, "Reset complete.")
		return nil
	},
}

// clearOutput removes the conversion build output directory.
func clearOutput() error {
	rel := env.Config.Paths.Output
	path := filepath.Join(env.Root(), rel)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	fmt.Fprintf(env.Stdout, "Removed build output: %s\n", rel)
	return nil
}

func init() {
	rootCmd.AddCommand(clearOutputCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(resetCmd)
}
