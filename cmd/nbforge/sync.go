package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy converted posts and figures into the site tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := env.Syncer().Sync()
		if err != nil {
			return wrapNoBuildOutput(err)
		}
		for _, p := range report.Copied {
			fmt.Fprintf(env.Stdout, "Synced -> %s\n", p)
		}
		fmt.Fprintf(env.Stdout, "%d synced, %d up to date\n", len(report.Copied), len(report.UpToDate))
		return nil
	},
}

var syncCheckCmd = &cobra.Command{
	Use:   "sync-check",
	Short: "Show what sync would copy and inspect pending posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := env.Syncer().Check()
		if err != nil {
			return wrapNoBuildOutput(err)
		}

		if len(report.Pending) == 0 {
			fmt.Fprintln(env.Stdout, "Everything is in sync.")
		} else {
			fmt.Fprintln(env.Stdout, "Pending sync:")
			for _, p := range report.Pending {
				fmt.Fprintf(env.Stdout, "  %s\n", p)
			}
		}

		problems := 0
		for _, post := range report.Posts {
			if post.Ready() {
				continue
			}
			problems++
			fmt.Fprintf(env.Stdout, "%s:\n", filepath.Base(post.Path))
			for _, p := range post.Problems {
				fmt.Fprintf(env.Stdout, "  %s\n", p)
			}
		}
		if problems > 0 {
			return fmt.Errorf("%d post(s) are not publishable", problems)
		}
		return nil
	},
}

var unsyncCmd = &cobra.Command{
	Use:   "unsync",
	Short: "Remove the synced copies from the site tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Syncer().Unsync(); err != nil {
			return wrapNoBuildOutput(err)
		}
		return nil
	},
}

// wrapNoBuildOutput attaches the convert-first hint to missing build
// output errors.
func wrapNoBuildOutput(err error) error {
	if errors.Is(err, nbforge.ErrNoBuildOutput) {
		return fmt.Errorf("%w%s", err, hints.ForNoBuildOutput())
	}
	return err
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(syncCheckCmd)
	rootCmd.AddCommand(unsyncCmd)
}
