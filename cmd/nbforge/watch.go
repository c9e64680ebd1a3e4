package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild notebooks as they are saved",
	Long: `Watch the notebooks tree and run execute, convert and sync for each
notebook when it is saved. Checkpoint copies are ignored. Runs until
interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runWatch(cmd.Context())
	},
}

func runWatch(ctx context.Context) error {
	notebooksDir := filepath.Join(env.Root(), env.Config.Paths.Notebooks)
	if info, err := os.Stat(notebooksDir); err != nil || !info.IsDir() {
		return fmt.Errorf("no notebooks directory at %s", notebooksDir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := watchDirsRecursive(w, notebooksDir); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Watching %s (Ctrl-C to stop)\n", env.Config.Paths.Notebooks)

	// One shared timer debounces the whole pending set; every event
	// pushes the deadline out again.
	var debounce *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]struct{})

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(watchDebounce)
			fire = debounce.C
		} else {
			debounce.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			fmt.Fprintln(env.Stdout, "Watch stopped.")
			return nil

		case <-fire:
			changed := pending
			pending = make(map[string]struct{})
			rebuild(ctx, changed)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if underCheckpoints(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := watchDirsRecursive(w, ev.Name); addErr != nil {
						env.Log.Warn("cannot watch new directory", "path", ev.Name, "error", addErr)
					}
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), nbforge.NotebookExt) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			env.Log.Error("watch error", "error", watchErr)
		}
	}
}

// rebuild runs execute, convert and sync for the changed notebooks.
// Failures are reported and watching continues.
func rebuild(ctx context.Context, changed map[string]struct{}) {
	jobs, err := env.Jobs()
	if err != nil {
		fmt.Fprintf(env.Stderr, "rebuild skipped: %v\n", err)
		return
	}

	conv, err := env.Converter(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "rebuild skipped: %v\n", err)
		return
	}

	rebuilt := 0
	for _, job := range jobs {
		abs := filepath.Join(env.Root(), job.Notebook.Path)
		if _, ok := changed[filepath.Clean(abs)]; !ok {
			continue
		}
		if err := conv.Execute(ctx, job.Notebook); err != nil {
			fmt.Fprintf(env.Stderr, "failed to execute %s: %v\n", job.Notebook.Path, err)
			continue
		}
		if err := conv.ConvertOne(ctx, job.Notebook); err != nil {
			fmt.Fprintf(env.Stderr, "failed to convert %s: %v\n", job.Notebook.Path, err)
			continue
		}
		fmt.Fprintf(env.Stdout, "Rebuilt %s\n", job.Notebook.Path)
		rebuilt++
	}
	if rebuilt == 0 {
		return
	}

	report, err := env.Syncer().Sync()
	if err != nil {
		fmt.Fprintf(env.Stderr, "failed to sync: %v\n", err)
		return
	}
	for _, p := range report.Copied {
		fmt.Fprintf(env.Stdout, "Synced -> %s\n", p)
	}
}

// underCheckpoints reports whether any path segment is the Jupyter
// autosave directory.
func underCheckpoints(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == nbforge.CheckpointDirName {
			return true
		}
	}
	return false
}

// watchDirsRecursive adds root and its subdirectories to the watcher,
// skipping checkpoint directories.
func watchDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == nbforge.CheckpointDirName {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
