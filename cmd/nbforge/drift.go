package main

import (
	"github.com/spf13/cobra"
)

var checkRenamedImagesCmd = &cobra.Command{
	Use:   "check-renamed-images",
	Short: "Report live images no longer produced by conversion",
	RunE: func(cmd *cobra.Command, args []string) error {
		return env.Reconciler().ReportImages()
	},
}

var checkRenamedPostsCmd = &cobra.Command{
	Use:   "check-renamed-posts",
	Short: "Report posts whose source notebook is gone",
	RunE: func(cmd *cobra.Command, args []string) error {
		return env.Reconciler().ReportPosts(cmd.Context())
	},
}

var checkRenamedCmd = &cobra.Command{
	Use:   "check-renamed",
	Short: "Report all drifted posts and images",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := env.Reconciler()
		if err := r.ReportImages(); err != nil {
			return err
		}
		return r.ReportPosts(cmd.Context())
	},
}

var clearRenamedImagesCmd = &cobra.Command{
	Use:   "clear-renamed-images",
	Short: "Remove live images no longer produced by conversion",
	RunE: func(cmd *cobra.Command, args []string) error {
		return env.Reconciler().CleanImages()
	},
}

var clearRenamedPostsCmd = &cobra.Command{
	Use:   "clear-renamed-posts",
	Short: "Remove posts whose source notebook is gone",
	RunE: func(cmd *cobra.Command, args []string) error {
		return env.Reconciler().CleanPosts(cmd.Context())
	},
}

var clearRenamedCmd = &cobra.Command{
	Use:   "clear-renamed",
	Short: "Remove all drifted posts and images",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := env.Reconciler()
		if err := r.CleanImages(); err != nil {
			return err
		}
		return r.CleanPosts(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(checkRenamedImagesCmd)
	rootCmd.AddCommand(checkRenamedPostsCmd)
	rootCmd.AddCommand(checkRenamedCmd)
	rootCmd.AddCommand(clearRenamedImagesCmd)
	rootCmd.AddCommand(clearRenamedPostsCmd)
	rootCmd.AddCommand(clearRenamedCmd)
}
