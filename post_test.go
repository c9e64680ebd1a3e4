package nbforge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePost(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectPostReady(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	figDir := filepath.Join(dir, "assets", "images", "intro_files")
	if err := os.MkdirAll(figDir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(figDir, "fig1.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := writePost(t, dir, "2024-03-01-intro.md", `---
layout: post
title: "Getting Started"
---

![png](/assets/images/intro_files/fig1.png)
`)

	report, err := InspectPost(path, dir)
	if err != nil {
		t.Fatalf("InspectPost() error = %v", err)
	}
	if !report.Ready() {
		t.Fatalf("InspectPost() problems = %v, want none", report.Problems)
	}
	if report.Title != "Getting Started" || report.Layout != "post" {
		t.Errorf("InspectPost() title=%q layout=%q", report.Title, report.Layout)
	}
	if report.Slug != "intro" {
		t.Errorf("InspectPost() slug = %q, want intro", report.Slug)
	}
	if got := report.Date.Format("2006-01-02"); got != "2024-03-01" {
		t.Errorf("InspectPost() date = %s, want 2024-03-01", got)
	}
	if len(report.Images) != 1 {
		t.Errorf("InspectPost() images = %v, want 1 reference", report.Images)
	}
}

func TestInspectPostProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		filename    string
		content     string
		wantProblem string
	}{
		{
			name:        "missing layout",
			filename:    "2024-03-01-a.md",
			content:     "---\ntitle: A\n---\nbody\n",
			wantProblem: "missing layout",
		},
		{
			name:        "missing title",
			filename:    "2024-03-01-b.md",
			content:     "---\nlayout: post\n---\nbody\n",
			wantProblem: "missing title",
		},
		{
			name:        "no date prefix",
			filename:    "notes.md",
			content:     "---\nlayout: post\ntitle: C\n---\nbody\n",
			wantProblem: "date prefix",
		},
		{
			name:        "impossible date",
			filename:    "2024-13-40-d.md",
			content:     "---\nlayout: post\ntitle: D\n---\nbody\n",
			wantProblem: "date prefix",
		},
		{
			name:        "missing figure",
			filename:    "2024-03-01-e.md",
			content:     "---\nlayout: post\ntitle: E\n---\n![png](/assets/images/e_files/gone.png)\n",
			wantProblem: "figure not found: /assets/images/e_files/gone.png",
		},
		{
			name:        "unparseable frontmatter",
			filename:    "2024-03-01-f.md",
			content:     "---\nlayout: [unclosed\n---\nbody\n",
			wantProblem: "unparseable frontmatter",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writePost(t, dir, tt.filename, tt.content)

			report, err := InspectPost(path, dir)
			if err != nil {
				t.Fatalf("InspectPost() error = %v", err)
			}
			if report.Ready() {
				t.Fatal("InspectPost() reported ready, want problems")
			}
			found := false
			for _, p := range report.Problems {
				if strings.Contains(p, tt.wantProblem) {
					found = true
				}
			}
			if !found {
				t.Errorf("InspectPost() problems = %v, want one containing %q", report.Problems, tt.wantProblem)
			}
		})
	}
}

func TestInspectPostSkipsRemoteImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writePost(t, dir, "2024-03-01-remote.md", `---
layout: post
title: Remote
---

![badge](https://example.com/badge.svg)
![inline](data:image/png;base64,iVBOR)
`)

	report, err := InspectPost(path, dir)
	if err != nil {
		t.Fatalf("InspectPost() error = %v", err)
	}
	if len(report.Images) != 2 {
		t.Errorf("InspectPost() images = %v, want both references recorded", report.Images)
	}
	if len(report.MissingFigures) != 0 {
		t.Errorf("InspectPost() missing figures = %v, want none", report.MissingFigures)
	}
	if !report.Ready() {
		t.Errorf("InspectPost() problems = %v, want none", report.Problems)
	}
}

func TestInspectPostUnreadable(t *testing.T) {
	t.Parallel()

	if _, err := InspectPost(filepath.Join(t.TempDir(), "absent.md"), t.TempDir()); err == nil {
		t.Error("InspectPost() error = nil, want open failure")
	}
}
