package nbforge

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testPost = `---
layout: post
title: "Intro to Pandas"
---

# Intro

![png](/assets/images/2024-01-15-intro_files/fig1.png)
`

// newTestSyncer builds a root tree with two converted posts and one
// figure directory, and returns a syncer over it plus its output buffer.
func newTestSyncer(t *testing.T) (*Syncer, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"_jupyter/converted/2024-01-15-intro.md":                           testPost,
		"_jupyter/converted/2024-03-01-pandas.md":                          testPost,
		"_jupyter/converted/assets/images/2024-01-15-intro_files/fig1.png": "png-bytes",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := &bytes.Buffer{}
	return &Syncer{
		Root:     root,
		Output:   filepath.Join("_jupyter", "converted"),
		Posts:    "_posts",
		Assets:   filepath.Join("assets", "images"),
		Format:   FormatMarkdown,
		Manifest: RecordLog{Path: filepath.Join(root, SyncManifestName)},
		Stdout:   out,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, out
}

func TestSync(t *testing.T) {
	t.Parallel()

	s, out := newTestSyncer(t)

	report, err := s.Sync()
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if got := len(report.Copied); got != 3 {
		t.Fatalf("Sync() copied %d files, want 3: %v", got, report.Copied)
	}
	if !strings.Contains(out.String(), "Moving all jupyter") {
		t.Errorf("Sync() output = %q, want moving banner", out.String())
	}

	for _, rel := range []string{
		"_posts/2024-01-15-intro.md",
		"_posts/2024-03-01-pandas.md",
		"assets/images/2024-01-15-intro_files/fig1.png",
	} {
		if _, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("Sync() did not produce %s: %v", rel, err)
		}
	}

	entries, err := s.Manifest.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("manifest holds %d entries, want 3: %v", len(entries), entries)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestSyncer(t)
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}

	report, err := s.Sync()
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if len(report.Copied) != 0 {
		t.Errorf("second Sync() copied %v, want nothing", report.Copied)
	}
	if len(report.UpToDate) != 3 {
		t.Errorf("second Sync() saw %d up-to-date files, want 3", len(report.UpToDate))
	}

	entries, err := s.Manifest.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("manifest grew to %d entries after re-sync, want 3", len(entries))
	}
}

func TestSyncCopiesUpdatedSources(t *testing.T) {
	t.Parallel()

	s, _ := newTestSyncer(t)
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(s.Root, "_jupyter", "converted", "2024-01-15-intro.md")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}

	report, err := s.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Copied) != 1 {
		t.Fatalf("Sync() after touch copied %v, want the touched post only", report.Copied)
	}

	// Re-copying an already recorded path must not duplicate it.
	entries, err := s.Manifest.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("manifest holds %d entries, want 3: %v", len(entries), entries)
	}
}

func TestSyncMissingOutputDir(t *testing.T) {
	t.Parallel()

	s, _ := newTestSyncer(t)
	s.Output = "no-such-dir"

	if _, err := s.Sync(); !errors.Is(err, ErrNoBuildOutput) {
		t.Errorf("Sync() error = %v, want ErrNoBuildOutput", err)
	}
}

func TestUnsync(t *testing.T) {
	t.Parallel()

	s, out := newTestSyncer(t)
	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	out.Reset()

	if err := s.Unsync(); err != nil {
		t.Fatalf("Unsync() error = %v", err)
	}

	for _, rel := range []string{
		"_posts/2024-01-15-intro.md",
		"_posts/2024-03-01-pandas.md",
		"assets/images/2024-01-15-intro_files",
	} {
		if _, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
			t.Errorf("Unsync() left %s behind", rel)
		}
	}

	output := out.String()
	if !strings.Contains(output, "Removed -> "+filepath.Join("_posts", "2024-01-15-intro.md")) {
		t.Errorf("Unsync() output = %q, want removal lines", output)
	}
	if !strings.Contains(output, "Unsyncing complete.") {
		t.Errorf("Unsync() output = %q, want completion line", output)
	}

	entries, err := s.Manifest.Read()
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("manifest after Unsync() = %v, want cleared", entries)
	}
}

func TestUnsyncSkipsMissingCopies(t *testing.T) {
	t.Parallel()

	s, out := newTestSyncer(t)

	// Nothing was synced; unsync has nothing to remove.
	if err := s.Unsync(); err != nil {
		t.Fatalf("Unsync() error = %v", err)
	}
	output := out.String()
	if strings.Contains(output, "Removed ->") {
		t.Errorf("Unsync() output = %q, want no removal lines", output)
	}
	if !strings.Contains(output, "Unsyncing complete.") {
		t.Errorf("Unsync() output = %q, want completion line", output)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	s, _ := newTestSyncer(t)

	report, err := s.Check()
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(report.Pending) != 3 {
		t.Errorf("Check() pending = %v, want 3 entries", report.Pending)
	}
	if len(report.Posts) != 2 {
		t.Fatalf("Check() inspected %d posts, want 2", len(report.Posts))
	}
	for _, post := range report.Posts {
		if !post.Ready() {
			t.Errorf("post %s not ready: %v", post.Path, post.Problems)
		}
	}

	// Nothing was written by the dry run.
	if _, err := os.Stat(filepath.Join(s.Root, "_posts")); !os.IsNotExist(err) {
		t.Error("Check() created the posts directory")
	}

	if _, err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	report, err = s.Check()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Pending) != 0 {
		t.Errorf("Check() after sync pending = %v, want none", report.Pending)
	}
}
