package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the synced files from the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		return commitStage(cmd.Context())
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the current branch to the remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pushStage(cmd.Context())
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Convert, sync, commit, and push in one run",
	Long: `Publish runs the full pipeline: execute and convert every notebook,
sync the artifacts into the site tree, commit the synced files, and push.
The first failing stage halts the run; completed work is kept, so a rerun
after fixing the cause picks up where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &nbforge.Publisher{
			Convert: convertStage,
			Sync: func(ctx context.Context) error {
				_, err := env.Syncer().Sync()
				return wrapNoBuildOutput(err)
			},
			Commit: commitStage,
			Push:   pushStage,
			Log:    env.Log,
		}

		report := p.Run(cmd.Context())
		if report.Err != nil {
			fmt.Fprintf(env.Stderr, "Publish halted; last completed stage: %s\n", report.Reached)
			return report.Err
		}
		fmt.Fprintln(env.Stdout, "Publish complete.")
		return nil
	},
}

// convertStage executes and converts every notebook. Unlike the
// standalone commands, any notebook failure fails the stage: publishing
// half the blog is worse than publishing none of it.
func convertStage(ctx context.Context) error {
	notebooks, err := env.Notebooks()
	if err != nil {
		return err
	}
	conv, err := env.Converter(ctx)
	if err != nil {
		return err
	}

	execReport := conv.ExecuteAll(ctx, notebooks)
	printBatch(execReport, "execute")
	if err := execReport.Err(); err != nil {
		return err
	}

	jobs, err := nbforge.MapOutputs(notebooks, env.Config.Paths.Output, env.Format)
	if err != nil {
		return err
	}
	convReport := conv.ConvertAll(ctx, jobs)
	printBatch(convReport, "convert")
	return convReport.Err()
}

// commitStage verifies the repository is usable and commits the
// manifest entries that still exist.
func commitStage(ctx context.Context) error {
	g := env.Git()
	if err := g.InsideWorkTree(ctx); err != nil {
		return err
	}
	if err := g.IsOwnershipSafe(ctx); err != nil {
		if errors.Is(err, nbforge.ErrUnsafeRepository) {
			return fmt.Errorf("%w%s", err, hints.ForDubiousOwnership(env.Root()))
		}
		return err
	}
	return nbforge.CommitManifest(ctx, g, env.Manifest(), env.Root(), nbforge.CommitMessage)
}

// pushStage pushes the configured or detected branch to the remote.
func pushStage(ctx context.Context) error {
	branch := env.Config.Git.Branch
	if branch == "" {
		var err error
		branch, err = env.Git().CurrentBranch(ctx)
		if err != nil {
			return err
		}
	}
	return env.Git().Push(ctx, env.Config.Git.Remote, branch)
}

func init() {
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(publishCmd)
}
