package nbforge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

// figureDirSuffix marks conversion-produced image directories. Asset
// directories without the suffix are never touched by reconciliation.
const figureDirSuffix = "_files"

// Reconciler detects and removes artifacts that drifted out of sync
// with the notebook sources: posts whose notebook was renamed or
// deleted, and live images no longer produced by conversion. Report
// operations never modify the tree; clear operations remove exactly the
// reported set and are idempotent.
type Reconciler struct {
	Root      string // absolute working root
	Notebooks string // root-relative
	Output    string // root-relative build output dir
	Posts     string // root-relative
	Assets    string // root-relative
	Git       *Git
	Stdout    io.Writer
}

// ImageFindings lists drifted image artifacts, root-relative.
type ImageFindings struct {
	ObsoleteDirs   []string // live figure dirs with no build counterpart
	LingeringFiles []string // live figure files with no build counterpart
}

// Empty reports whether nothing drifted.
func (f *ImageFindings) Empty() bool {
	return len(f.ObsoleteDirs) == 0 && len(f.LingeringFiles) == 0
}

// UntrackedPosts returns posts unknown to git whose source notebook no
// longer exists, root-relative.
func (r *Reconciler) UntrackedPosts(ctx context.Context) ([]string, error) {
	files, err := r.Git.UntrackedFiles(ctx, r.Posts)
	if err != nil {
		return nil, err
	}

	var untracked []string
	for _, rel := range files {
		base := filepath.Base(rel)
		notebook := strings.TrimSuffix(base, filepath.Ext(base)) + NotebookExt
		if !fileutil.FileExists(filepath.Join(r.Root, r.Notebooks, notebook)) {
			untracked = append(untracked, rel)
		}
	}
	return untracked, nil
}

// ReportPosts prints the untracked-post findings without modifying
// anything. Findings are not an error.
func (r *Reconciler) ReportPosts(ctx context.Context) error {
	found, err := r.UntrackedPosts(ctx)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(r.Stdout, "No untracked posts found.")
		return nil
	}

	fmt.Fprintln(r.Stdout, "Untracked posts found:")
	for _, p := range found {
		fmt.Fprintf(r.Stdout, "  %s\n", p)
	}
	fmt.Fprintln(r.Stdout, hints.ForUntrackedPosts())
	return nil
}

// CleanPosts removes every untracked post and its figure directory.
func (r *Reconciler) CleanPosts(ctx context.Context) error {
	found, err := r.UntrackedPosts(ctx)
	if err != nil {
		return err
	}

	for _, rel := range found {
		path := filepath.Join(r.Root, rel)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		fmt.Fprintf(r.Stdout, "Removed untracked post: %s\n", rel)

		base := filepath.Base(rel)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		imgRel := filepath.Join(r.Assets, name+figureDirSuffix)
		imgDir := filepath.Join(r.Root, imgRel)
		if fileutil.DirExists(imgDir) {
			if err := os.RemoveAll(imgDir); err != nil {
				return fmt.Errorf("removing %s: %w", imgDir, err)
			}
			fmt.Fprintf(r.Stdout, "Removed corresponding image directory: %s\n", imgRel)
		}
	}
	fmt.Fprintln(r.Stdout, "Cleanup complete.")
	return nil
}

// CheckImages computes the image drift findings. The build output
// directory must exist: without it every live image would read as
// lingering, so its absence fails fast instead.
func (r *Reconciler) CheckImages() (*ImageFindings, error) {
	outDir := filepath.Join(r.Root, r.Output)
	if !fileutil.DirExists(outDir) {
		return nil, fmt.Errorf("%w: %s", ErrNoBuildOutput, r.Output)
	}

	findings := &ImageFindings{}
	liveAssets := filepath.Join(r.Root, r.Assets)
	if !fileutil.DirExists(liveAssets) {
		return findings, nil
	}

	entries, err := os.ReadDir(liveAssets)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", liveAssets, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), figureDirSuffix) {
			continue
		}

		relDir := filepath.Join(r.Assets, entry.Name())
		buildDir := filepath.Join(outDir, relDir)
		if !fileutil.DirExists(buildDir) {
			findings.ObsoleteDirs = append(findings.ObsoleteDirs, relDir)
			continue
		}

		liveDir := filepath.Join(liveAssets, entry.Name())
		err := filepath.WalkDir(liveDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				return nil
			}
			inner, err := filepath.Rel(liveDir, path)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if !fileutil.FileExists(filepath.Join(buildDir, inner)) {
				findings.LingeringFiles = append(findings.LingeringFiles, filepath.Join(relDir, inner))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return findings, nil
}

// ReportImages prints the image drift findings without modifying
// anything. Findings are not an error; a missing build output dir is.
func (r *Reconciler) ReportImages() error {
	fmt.Fprintln(r.Stdout, "Checking renamed or lingering images...")
	findings, err := r.CheckImages()
	if err != nil {
		r.warnNoOutput(err)
		return err
	}
	if findings.Empty() {
		fmt.Fprintln(r.Stdout, "No lingering images found.")
		return nil
	}

	for _, d := range findings.ObsoleteDirs {
		fmt.Fprintf(r.Stdout, "❌ Lingering image directory detected: %s\n", d)
	}
	for _, f := range findings.LingeringFiles {
		fmt.Fprintf(r.Stdout, "❌ Lingering image detected: %s\n", f)
	}
	return nil
}

// CleanImages removes every drifted image artifact.
func (r *Reconciler) CleanImages() error {
	fmt.Fprintln(r.Stdout, "Clearing renamed or lingering images...")
	findings, err := r.CheckImages()
	if err != nil {
		r.warnNoOutput(err)
		return err
	}

	for _, d := range findings.ObsoleteDirs {
		if err := os.RemoveAll(filepath.Join(r.Root, d)); err != nil {
			return fmt.Errorf("removing %s: %w", d, err)
		}
		fmt.Fprintf(r.Stdout, "🗑️ Removed obsolete image directory: %s\n", d)
	}
	for _, f := range findings.LingeringFiles {
		if err := os.Remove(filepath.Join(r.Root, f)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", f, err)
		}
		fmt.Fprintf(r.Stdout, "🗑️ Removed lingering image: %s\n", f)
	}
	return nil
}

func (r *Reconciler) warnNoOutput(err error) {
	if errors.Is(err, ErrNoBuildOutput) {
		fmt.Fprintf(r.Stdout, "⚠️ Warning: output directory %s does not exist. Run 'nbforge convert' first.\n", r.Output)
	}
}
