package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

var previewOutput string

var previewCmd = &cobra.Command{
	Use:   "preview <post>",
	Short: "Render a converted post to standalone HTML",
	Long: `Preview renders one converted markdown post to a self-contained HTML
document, without a full site build. Problems the site would choke on
(missing frontmatter keys, bad date prefix, unresolved figures) are
reported as warnings first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(env.Root(), path)
		}

		// Posts still in the build output resolve their figures there;
		// synced posts resolve them against the site tree.
		figureRoot := env.Root()
		outDir := filepath.Join(env.Root(), env.Config.Paths.Output)
		if strings.HasPrefix(path, outDir+string(filepath.Separator)) {
			figureRoot = outDir
		}

		report, err := nbforge.InspectPost(path, figureRoot)
		if err != nil {
			return err
		}
		for _, p := range report.Problems {
			fmt.Fprintf(env.Stderr, "warning: %s\n", p)
		}

		src, err := os.ReadFile(path) // #nosec G304 -- user-selected post
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		html, err := nbforge.NewPreviewer(env.Config.Convert.Theme).Render(cmd.Context(), src)
		if err != nil {
			return err
		}

		if previewOutput == "" {
			fmt.Fprint(env.Stdout, html)
			return nil
		}
		if err := os.WriteFile(previewOutput, []byte(html), fileutil.FilePermissions); err != nil {
			return fmt.Errorf("writing %s: %w", previewOutput, err)
		}
		fmt.Fprintf(env.Stdout, "Preview written to %s\n", previewOutput)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "write the HTML to a file instead of stdout")
	rootCmd.AddCommand(previewCmd)
}
