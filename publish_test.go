package nbforge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestPublisher(calls *[]string, failAt string) *Publisher {
	stage := func(name string) func(context.Context) error {
		return func(context.Context) error {
			*calls = append(*calls, name)
			if name == failAt {
				return errors.New(name + " blew up")
			}
			return nil
		}
	}
	return &Publisher{
		Convert: stage("convert"),
		Sync:    stage("sync"),
		Commit:  stage("commit"),
		Push:    stage("push"),
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestPublisherRun(t *testing.T) {
	t.Parallel()

	var calls []string
	p := newTestPublisher(&calls, "")

	report := p.Run(context.Background())
	if report.State != StateDone {
		t.Errorf("Run() state = %s, want %s", report.State, StateDone)
	}
	if report.Reached != StatePushed {
		t.Errorf("Run() reached = %s, want %s", report.Reached, StatePushed)
	}
	if report.Err != nil {
		t.Errorf("Run() err = %v, want nil", report.Err)
	}
	if want := []string{"convert", "sync", "commit", "push"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("Run() stages = %v, want %v", calls, want)
	}
}

func TestPublisherHaltsOnFirstFailure(t *testing.T) {
	t.Parallel()

	var calls []string
	p := newTestPublisher(&calls, "sync")

	report := p.Run(context.Background())
	if report.State != StateFailed {
		t.Errorf("Run() state = %s, want %s", report.State, StateFailed)
	}
	if report.Reached != StateConverted {
		t.Errorf("Run() reached = %s, want %s", report.Reached, StateConverted)
	}
	if report.Err == nil || report.Err.Error() != "sync: sync blew up" {
		t.Errorf("Run() err = %v, want the wrapped sync failure", report.Err)
	}
	// Later stages never run; completed artifacts are not rolled back.
	if want := []string{"convert", "sync"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("Run() stages = %v, want %v", calls, want)
	}
}

func TestPublisherCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	report := newTestPublisher(&calls, "").Run(ctx)

	if report.State != StateFailed {
		t.Errorf("Run() state = %s, want %s", report.State, StateFailed)
	}
	if !errors.Is(report.Err, context.Canceled) {
		t.Errorf("Run() err = %v, want context.Canceled", report.Err)
	}
	if len(calls) != 0 {
		t.Errorf("Run() stages = %v, want none", calls)
	}
}

func TestCommitManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{"_posts/2024-01-15-intro.md", "assets/images/intro_files/fig.png"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	manifest := RecordLog{Path: filepath.Join(root, SyncManifestName)}
	if err := manifest.Append(
		"_posts/2024-01-15-intro.md",
		"assets/images/intro_files/fig.png",
		"_posts/2024-02-02-deleted-since.md",
	); err != nil {
		t.Fatal(err)
	}

	r := newFakeRunner()
	r.outputs["diff --cached"] = "_posts/2024-01-15-intro.md"
	g := &Git{Runner: r, Dir: root}

	if err := CommitManifest(context.Background(), g, manifest, root, CommitMessage); err != nil {
		t.Fatalf("CommitManifest() error = %v", err)
	}

	want := []string{
		"git add -- _posts/2024-01-15-intro.md assets/images/intro_files/fig.png",
		"git diff --cached --name-only",
		"git commit -m " + CommitMessage,
	}
	if got := r.ran(); !reflect.DeepEqual(got, want) {
		t.Errorf("CommitManifest() ran %v, want %v", got, want)
	}

	// The manifest survives the commit for later re-publishes.
	entries, err := manifest.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("manifest after commit holds %v, want all entries kept", entries)
	}
}

func TestCommitManifestEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := newFakeRunner()
	g := &Git{Runner: r, Dir: root}
	manifest := RecordLog{Path: filepath.Join(root, SyncManifestName)}

	if err := CommitManifest(context.Background(), g, manifest, root, CommitMessage); err != nil {
		t.Fatalf("CommitManifest() error = %v", err)
	}
	if got := r.ran(); len(got) != 0 {
		t.Errorf("CommitManifest() ran %v, want nothing", got)
	}
}

func TestCommitManifestAlreadyCommitted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "_posts", "2024-01-15-intro.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest := RecordLog{Path: filepath.Join(root, SyncManifestName)}
	if err := manifest.Append("_posts/2024-01-15-intro.md"); err != nil {
		t.Fatal(err)
	}

	// Staging produces no changes, so no commit is attempted.
	r := newFakeRunner()
	g := &Git{Runner: r, Dir: root}

	if err := CommitManifest(context.Background(), g, manifest, root, CommitMessage); err != nil {
		t.Errorf("CommitManifest() error = %v, want clean trees tolerated", err)
	}
	if n := r.ranMatching("git commit"); n != 0 {
		t.Errorf("CommitManifest() ran %d commits, want none", n)
	}
}
