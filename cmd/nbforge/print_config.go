package main

import (
	"fmt"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
)

var printConfigCmd = &cobra.Command{
	Use:   "print-config",
	Short: "Print the resolved configuration",
	Long: `Print the resolved configuration as "Key: Value" lines, including the
repository identity and image names derived from the git remote. Scripts
parse this output, so the keys are stable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := env.Config
		out := env.Stdout

		// Identity is best-effort here: print-config is a diagnostic and
		// should show what it can even in a broken repository.
		url, err := env.Git().RemoteURL(ctx, cfg.Git.Remote)
		if err != nil {
			url = ""
		}
		id, perr := nbforge.ParseRemoteURL(url)
		invalid := ""
		if perr != nil {
			invalid = fmt.Sprintf("Invalid remote URL (%s)", url)
		}

		branch := cfg.Git.Branch
		if branch == "" {
			if detected, err := env.Git().CurrentBranch(ctx); err == nil {
				branch = detected
			}
		}
		id.Branch = branch

		user, repo := id.User, id.Repo
		jupyterImage := cfg.Docker.JupyterImage
		testsImage := cfg.Docker.TestsImage
		srcPath := id.SourcePath(cfg.Docker.SourceRoot)
		if jupyterImage == "" {
			jupyterImage = id.JupyterImage(cfg.Docker.Registry)
		}
		if testsImage == "" {
			testsImage = id.TestingImage(cfg.Docker.Registry)
		}
		if invalid != "" {
			user, repo, srcPath = invalid, invalid, invalid
			if cfg.Docker.JupyterImage == "" {
				jupyterImage = invalid
			}
			if cfg.Docker.TestsImage == "" {
				testsImage = invalid
			}
		}

		fmt.Fprintf(out, "Current Directory: %s\n", env.Root())
		fmt.Fprintf(out, "Notebooks Directory: %s\n", cfg.Paths.Notebooks)
		fmt.Fprintf(out, "Output Directory: %s\n", cfg.Paths.Output)
		fmt.Fprintf(out, "Posts Directory: %s\n", cfg.Paths.Posts)
		fmt.Fprintf(out, "Assets Directory: %s\n", cfg.Paths.Assets)
		fmt.Fprintf(out, "Output Format: %s\n", env.Format)
		fmt.Fprintf(out, "Log Level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "Pause Seconds: %d\n", cfg.PauseSeconds)
		fmt.Fprintf(out, "Git Remote: %s\n", cfg.Git.Remote)
		fmt.Fprintf(out, "Git Branch: %s\n", branch)
		fmt.Fprintf(out, "GitHub User: %s\n", user)
		fmt.Fprintf(out, "Repository Name: %s\n", repo)
		fmt.Fprintf(out, "Docker Jupyter Image: %s\n", jupyterImage)
		fmt.Fprintf(out, "Docker Testing Image: %s\n", testsImage)
		fmt.Fprintf(out, "Docker Source Path: %s\n", srcPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(printConfigCmd)
}
