package nbforge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// jekyllCaches are the build caches removed alongside the site.
var jekyllCaches = []string{".jekyll-cache", ".jekyll-metadata"}

// Jekyll wraps site build and serve tasks. The runner is expected to
// execute inside the testing image, which carries Ruby and the site's
// bundled gems.
type Jekyll struct {
	Runner Runner
	Root   string // absolute working root, for cache cleanup
	Site   string // built site dir, root-relative
	Port   int
	Log    *slog.Logger
}

// BuildArgs returns the invocation that builds the static site.
func (j *Jekyll) BuildArgs() Command {
	return Command{
		Name: "bundle",
		Args: []string{"exec", "jekyll", "build", "--source", ".", "--destination", j.Site},
	}
}

// ServeCommand returns the in-container command for the long-running
// development server. The caller wraps it in a detached RunSpec with
// the port published.
func (j *Jekyll) ServeCommand() []string {
	return []string{
		"bundle", "exec", "jekyll", "serve",
		"--host", "0.0.0.0",
		"--port", strconv.Itoa(j.Port),
		"--source", ".",
		"--destination", j.Site,
	}
}

// Build builds the static site into the site directory.
func (j *Jekyll) Build(ctx context.Context) error {
	return j.Runner.Run(ctx, j.BuildArgs())
}

// Clean removes the built site and Jekyll's caches.
func (j *Jekyll) Clean() error {
	targets := append([]string{j.Site}, jekyllCaches...)
	for _, rel := range targets {
		path := filepath.Join(j.Root, rel)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		j.Log.Debug("removed", "path", rel)
	}
	return nil
}
