package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Run every notebook top to bottom, in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		notebooks, err := env.Notebooks()
		if err != nil {
			return err
		}
		if len(notebooks) == 0 {
			fmt.Fprintln(env.Stdout, "No notebooks found.")
			return nil
		}

		conv, err := env.Converter(ctx)
		if err != nil {
			return err
		}
		report := conv.ExecuteAll(ctx, notebooks)
		printBatch(report, "execute")
		return report.Err()
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert executed notebooks into the configured format",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobs, err := env.Jobs()
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Fprintln(env.Stdout, "No notebooks found.")
			return nil
		}

		conv, err := env.Converter(ctx)
		if err != nil {
			return err
		}
		report := conv.ConvertAll(ctx, jobs)
		printBatch(report, "convert")
		return report.Err()
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Execute, convert, and sync every notebook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		notebooks, err := env.Notebooks()
		if err != nil {
			return err
		}
		if len(notebooks) == 0 {
			fmt.Fprintln(env.Stdout, "No notebooks found.")
			return nil
		}

		conv, err := env.Converter(ctx)
		if err != nil {
			return err
		}

		execReport := conv.ExecuteAll(ctx, notebooks)
		printBatch(execReport, "execute")

		// A notebook that failed to execute is stale; converting it
		// would publish the previous run's results.
		jobs, err := nbforge.MapOutputs(execReport.Successes(), env.Config.Paths.Output, env.Format)
		if err != nil {
			return err
		}
		convReport := conv.ConvertAll(ctx, jobs)
		printBatch(convReport, "convert")

		if _, err := env.Syncer().Sync(); err != nil {
			return err
		}

		if err := execReport.Err(); err != nil {
			return err
		}
		return convReport.Err()
	},
}

var clearNBCmd = &cobra.Command{
	Use:   "clear-nb",
	Short: "Strip stored outputs from every notebook, in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		notebooks, err := env.Notebooks()
		if err != nil {
			return err
		}
		if len(notebooks) == 0 {
			fmt.Fprintln(env.Stdout, "No notebooks found.")
			return nil
		}

		conv, err := env.Converter(ctx)
		if err != nil {
			return err
		}
		report := conv.ClearAll(ctx, notebooks)
		printBatch(report, "clear")
		return report.Err()
	},
}

var updateTimesCmd = &cobra.Command{
	Use:   "update-times",
	Short: "Refresh every notebook's modification time",
	RunE: func(cmd *cobra.Command, args []string) error {
		notebooks, err := env.Notebooks()
		if err != nil {
			return err
		}
		now := env.Now()
		for _, nb := range notebooks {
			if err := fileutil.Touch(filepath.Join(env.Root(), nb.Path), now); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "Touched %s\n", nb.Path)
		}
		return nil
	},
}

// printBatch reports per-notebook failures and the batch tally.
func printBatch(report *nbforge.BatchReport, verb string) {
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(env.Stderr, "failed to %s %s: %v\n", verb, res.Notebook.Path, res.Err)
		}
	}
	fmt.Fprintf(env.Stdout, "%d succeeded, %d failed\n", report.Succeeded(), report.Failed())
}

func init() {
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(clearNBCmd)
	rootCmd.AddCommand(updateTimesCmd)
}
