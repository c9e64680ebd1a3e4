package nbforge

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

// Syncer moves finished conversion artifacts from the build output tree
// into the live site tree: posts into the posts directory, figure
// directories into the assets directory. Copies happen only when the
// source is newer, destinations are never deleted, and every synced
// path is recorded in the manifest for the commit step.
type Syncer struct {
	Root     string // absolute working root
	Output   string // build output dir, root-relative
	Posts    string // posts dir, root-relative
	Assets   string // live assets dir, root-relative
	Format   Format
	Manifest RecordLog
	Stdout   io.Writer
	Log      *slog.Logger
}

// SyncReport lists what a sync pass wrote and what it left alone.
// Paths are root-relative destinations.
type SyncReport struct {
	Copied   []string
	UpToDate []string
}

// CheckReport is the dry-run counterpart of SyncReport, with an
// inspection of every pending post.
type CheckReport struct {
	Pending  []string
	UpToDate []string
	Posts    []*PostReport
}

// Sync copies posts and figures into the site tree and appends newly
// synced paths to the manifest. Syncing twice without source changes is
// a no-op.
func (s *Syncer) Sync() (*SyncReport, error) {
	fmt.Fprintln(s.Stdout, "Moving all jupyter site files...")

	report := &SyncReport{}
	err := s.eachArtifact(func(src, dstRel string) error {
		dst := filepath.Join(s.Root, dstRel)
		copied, err := fileutil.CopyIfNewer(src, dst)
		if err != nil {
			return err
		}
		if copied {
			s.Log.Debug("synced", "path", dstRel)
			report.Copied = append(report.Copied, dstRel)
		} else {
			report.UpToDate = append(report.UpToDate, dstRel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.record(report.Copied); err != nil {
		return nil, err
	}
	return report, nil
}

// Unsync removes the synced copies derived from the current build
// outputs and clears the manifest. Copies already missing are skipped
// silently.
func (s *Syncer) Unsync() error {
	outDir := filepath.Join(s.Root, s.Output)

	posts, err := s.outputPosts()
	if err != nil {
		return err
	}
	for _, name := range posts {
		rel := filepath.Join(s.Posts, name)
		if err := s.removeSynced(rel, false); err != nil {
			return err
		}
	}

	buildAssets := filepath.Join(outDir, s.Assets)
	if fileutil.DirExists(buildAssets) {
		entries, err := os.ReadDir(buildAssets)
		if err != nil {
			return fmt.Errorf("reading %s: %w", buildAssets, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			rel := filepath.Join(s.Assets, entry.Name())
			if err := s.removeSynced(rel, true); err != nil {
				return err
			}
		}
	}

	if err := s.Manifest.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(s.Stdout, "Unsyncing complete.")
	return nil
}

// Check reports what Sync would copy without writing anything, and
// inspects each build-output post for publishing problems.
func (s *Syncer) Check() (*CheckReport, error) {
	report := &CheckReport{}
	err := s.eachArtifact(func(src, dstRel string) error {
		needed, err := fileutil.NeedsCopy(src, filepath.Join(s.Root, dstRel))
		if err != nil {
			return err
		}
		if needed {
			report.Pending = append(report.Pending, dstRel)
		} else {
			report.UpToDate = append(report.UpToDate, dstRel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Posts are inspected against the build output tree, where their
	// figures live before syncing.
	posts, err := s.outputPosts()
	if err != nil {
		return nil, err
	}
	outDir := filepath.Join(s.Root, s.Output)
	for _, name := range posts {
		inspection, err := InspectPost(filepath.Join(outDir, name), outDir)
		if err != nil {
			return nil, err
		}
		report.Posts = append(report.Posts, inspection)
	}
	return report, nil
}

// eachArtifact visits every syncable artifact: posts by extension in
// the build output root, then the whole build-side assets subtree.
func (s *Syncer) eachArtifact(visit func(src, dstRel string) error) error {
	outDir := filepath.Join(s.Root, s.Output)

	posts, err := s.outputPosts()
	if err != nil {
		return err
	}
	for _, name := range posts {
		src := filepath.Join(outDir, name)
		if err := visit(src, filepath.Join(s.Posts, name)); err != nil {
			return err
		}
	}

	buildAssets := filepath.Join(outDir, s.Assets)
	if !fileutil.DirExists(buildAssets) {
		return nil
	}
	return filepath.WalkDir(buildAssets, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(buildAssets, path)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		return visit(path, filepath.Join(s.Assets, rel))
	})
}

// outputPosts lists the post artifacts in the build output root,
// sorted, as bare filenames.
func (s *Syncer) outputPosts() ([]string, error) {
	outDir := filepath.Join(s.Root, s.Output)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoBuildOutput, outDir)
		}
		return nil, fmt.Errorf("reading %s: %w", outDir, err)
	}

	ext := "." + s.Format.Extension()
	var posts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ext {
			posts = append(posts, entry.Name())
		}
	}
	return posts, nil
}

// removeSynced deletes one synced copy, printing the removal. Missing
// copies are skipped without output.
func (s *Syncer) removeSynced(rel string, isDir bool) error {
	path := filepath.Join(s.Root, rel)
	if isDir {
		if !fileutil.DirExists(path) {
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	} else {
		if !fileutil.FileExists(path) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	fmt.Fprintf(s.Stdout, "Removed -> %s\n", rel)
	return nil
}

// record appends newly synced paths to the manifest, skipping paths
// already recorded.
func (s *Syncer) record(copied []string) error {
	if len(copied) == 0 {
		return nil
	}
	existing, err := s.Manifest.Read()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e] = true
	}

	var fresh []string
	for _, path := range copied {
		if !known[path] {
			fresh = append(fresh, path)
		}
	}
	return s.Manifest.Append(fresh...)
}
