package nbforge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

// CommitMessage is the fixed message used when publishing converted
// notebook content.
const CommitMessage = "Publish converted notebook content"

// PublishState names the stages of the publishing pipeline.
type PublishState string

// Pipeline states. Failed is absorbing: a failed stage halts the run
// and nothing is rolled back.
const (
	StateIdle      PublishState = "idle"
	StateConverted PublishState = "converted"
	StateSynced    PublishState = "synced"
	StateCommitted PublishState = "committed"
	StatePushed    PublishState = "pushed"
	StateDone      PublishState = "done"
	StateFailed    PublishState = "failed"
)

// PublishReport records how far a publish run progressed.
type PublishReport struct {
	State   PublishState // StateDone, or StateFailed
	Reached PublishState // last completed stage
	Err     error        // nil unless State is StateFailed
}

// Publisher drives the linear publish pipeline: convert, sync, commit,
// push. The first failing stage halts the run; artifacts written by
// completed stages persist, so a rerun after fixing the cause picks up
// where the work is still missing.
type Publisher struct {
	Convert func(context.Context) error
	Sync    func(context.Context) error
	Commit  func(context.Context) error
	Push    func(context.Context) error
	Log     *slog.Logger
}

// Run executes the pipeline stages in order, checking for cancellation
// between stages.
func (p *Publisher) Run(ctx context.Context) *PublishReport {
	stages := []struct {
		name string
		next PublishState
		fn   func(context.Context) error
	}{
		{"convert", StateConverted, p.Convert},
		{"sync", StateSynced, p.Sync},
		{"commit", StateCommitted, p.Commit},
		{"push", StatePushed, p.Push},
	}

	report := &PublishReport{State: StateIdle, Reached: StateIdle}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			report.State = StateFailed
			report.Err = err
			return report
		}

		p.Log.Info("publishing", "stage", stage.name)
		if err := stage.fn(ctx); err != nil {
			report.State = StateFailed
			report.Err = fmt.Errorf("%s: %w", stage.name, err)
			return report
		}
		report.Reached = stage.next
		report.State = stage.next
	}

	report.State = StateDone
	return report
}

// CommitManifest stages every manifest entry that still exists on disk
// and commits with the publish message. An empty manifest, or entries
// that are all already committed, means there is nothing to publish,
// which is not an error. The manifest is left intact so later runs can
// re-commit updates.
func CommitManifest(ctx context.Context, g *Git, manifest RecordLog, root, message string) error {
	entries, err := manifest.Read()
	if err != nil {
		return err
	}

	var existing []string
	for _, rel := range entries {
		if fileutil.FileExists(filepath.Join(root, rel)) {
			existing = append(existing, rel)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := g.Add(ctx, existing...); err != nil {
		return err
	}
	staged, err := g.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		return nil
	}
	return g.Commit(ctx, message)
}
