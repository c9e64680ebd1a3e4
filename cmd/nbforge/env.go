package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/config"
)

// Environment holds injectable dependencies for testability, plus the
// validated configuration shared across commands. Component accessors
// build the orchestration objects wired to the configured tree.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Config *config.Config
	Log    *slog.Logger
	Format nbforge.Format

	// Repository identity is resolved lazily: most tasks never need it,
	// and resolving costs two git round trips.
	identityOnce sync.Once
	identity     nbforge.RepoIdentity
	identityErr  error
}

// NewEnvironment builds the production environment from a validated
// configuration: process streams, a logger at the configured level, and
// the parsed output format.
func NewEnvironment(cfg *config.Config) (*Environment, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	format, err := nbforge.ParseFormat(cfg.Convert.Format)
	if err != nil {
		return nil, err
	}

	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Config: cfg,
		Log: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
		Format: format,
	}, nil
}

// Root returns the absolute working root.
func (e *Environment) Root() string {
	return e.Config.Root
}

// Runner returns a host runner working from the root, wired to the
// environment's streams.
func (e *Environment) Runner() *nbforge.ExecRunner {
	r := nbforge.NewExecRunner(e.Root())
	r.Stdout = e.Stdout
	r.Stderr = e.Stderr
	r.Stdin = e.Stdin
	return r
}

// Git returns the git wrapper rooted at the working root.
func (e *Environment) Git() *nbforge.Git {
	return &nbforge.Git{Runner: e.Runner(), Dir: e.Root()}
}

// Docker returns the docker wrapper. Docker itself always runs on the
// host; only the commands it launches run inside containers.
func (e *Environment) Docker() *nbforge.Docker {
	return &nbforge.Docker{Runner: e.Runner()}
}

// Containers returns the managed-container set backed by the record
// file at the working root.
func (e *Environment) Containers() *nbforge.Containers {
	return &nbforge.Containers{
		Docker: e.Docker(),
		Record: nbforge.RecordLog{Path: filepath.Join(e.Root(), nbforge.ContainerRecordName)},
	}
}

// Manifest returns the synced-file manifest record.
func (e *Environment) Manifest() nbforge.RecordLog {
	return nbforge.RecordLog{Path: filepath.Join(e.Root(), nbforge.SyncManifestName)}
}

// Identity resolves the repository identity from the configured remote
// and branch, caching the result for the life of the process.
func (e *Environment) Identity(ctx context.Context) (nbforge.RepoIdentity, error) {
	e.identityOnce.Do(func() {
		e.identity, e.identityErr = e.Git().ResolveIdentity(ctx, e.Config.Git.Remote, e.Config.Git.Branch)
	})
	return e.identity, e.identityErr
}

// JupyterImage returns the notebook-execution image name, honoring the
// configured override.
func (e *Environment) JupyterImage(ctx context.Context) (string, error) {
	if img := e.Config.Docker.JupyterImage; img != "" {
		return img, nil
	}
	id, err := e.Identity(ctx)
	if err != nil {
		return "", err
	}
	return id.JupyterImage(e.Config.Docker.Registry), nil
}

// TestsImage returns the lint-and-test image name, honoring the
// configured override.
func (e *Environment) TestsImage(ctx context.Context) (string, error) {
	if img := e.Config.Docker.TestsImage; img != "" {
		return img, nil
	}
	id, err := e.Identity(ctx)
	if err != nil {
		return "", err
	}
	return id.TestingImage(e.Config.Docker.Registry), nil
}

// SourcePath returns the in-container path the repository is mounted at.
func (e *Environment) SourcePath(ctx context.Context) (string, error) {
	id, err := e.Identity(ctx)
	if err != nil {
		return "", err
	}
	return id.SourcePath(e.Config.Docker.SourceRoot), nil
}

// ContainerBase returns the run spec shared by every in-container
// command for the given image: repository mounted at its source path,
// host uid:gid mapped in so volume writes stay owned by the operator,
// terminal attached unless the config says there is none.
func (e *Environment) ContainerBase(ctx context.Context, image string) (nbforge.RunSpec, error) {
	src, err := e.SourcePath(ctx)
	if err != nil {
		return nbforge.RunSpec{}, err
	}

	base := nbforge.RunSpec{
		Image:       image,
		Interactive: true,
		NoTTY:       e.Config.Docker.NoTTY,
		Workdir:     src,
	}
	if e.Config.Docker.UseVolume {
		base.Volume = e.Root() + ":" + src
	}
	if e.Config.Docker.UseUser {
		// Getuid returns -1 on Windows; skip the mapping there.
		if uid := os.Getuid(); uid >= 0 {
			base.User = fmt.Sprintf("%d:%d", uid, os.Getgid())
		}
	}
	return base, nil
}

func (e *Environment) containerRunner(ctx context.Context, image string) (nbforge.Runner, error) {
	base, err := e.ContainerBase(ctx, image)
	if err != nil {
		return nil, err
	}
	return &nbforge.ContainerRunner{Docker: e.Docker(), Base: base}, nil
}

// JupyterRunner returns the runner conversion commands execute on: the
// Jupyter image container, or the host when docker.local is set.
func (e *Environment) JupyterRunner(ctx context.Context) (nbforge.Runner, error) {
	if e.Config.Docker.Local {
		return e.Runner(), nil
	}
	image, err := e.JupyterImage(ctx)
	if err != nil {
		return nil, err
	}
	return e.containerRunner(ctx, image)
}

// TestsRunner returns the runner lint, test, and site commands execute
// on: the testing image container, or the host when docker.local is set.
func (e *Environment) TestsRunner(ctx context.Context) (nbforge.Runner, error) {
	if e.Config.Docker.Local {
		return e.Runner(), nil
	}
	image, err := e.TestsImage(ctx)
	if err != nil {
		return nil, err
	}
	return e.containerRunner(ctx, image)
}

// Converter returns the nbconvert wrapper bound to the conversion runner.
func (e *Environment) Converter(ctx context.Context) (*nbforge.Converter, error) {
	runner, err := e.JupyterRunner(ctx)
	if err != nil {
		return nil, err
	}
	return &nbforge.Converter{
		Runner:    runner,
		Format:    e.Format,
		Theme:     e.Config.Convert.Theme,
		Template:  e.Config.Convert.Template,
		FigureDir: e.Config.Convert.FigureDir,
		OutputDir: e.Config.Paths.Output,
	}, nil
}

// Syncer returns the artifact syncer for the configured tree.
func (e *Environment) Syncer() *nbforge.Syncer {
	return &nbforge.Syncer{
		Root:     e.Root(),
		Output:   e.Config.Paths.Output,
		Posts:    e.Config.Paths.Posts,
		Assets:   e.Config.Paths.Assets,
		Format:   e.Format,
		Manifest: e.Manifest(),
		Stdout:   e.Stdout,
		Log:      e.Log,
	}
}

// Reconciler returns the drift reconciler for the configured tree.
func (e *Environment) Reconciler() *nbforge.Reconciler {
	return &nbforge.Reconciler{
		Root:      e.Root(),
		Notebooks: e.Config.Paths.Notebooks,
		Output:    e.Config.Paths.Output,
		Posts:     e.Config.Paths.Posts,
		Assets:    e.Config.Paths.Assets,
		Git:       e.Git(),
		Stdout:    e.Stdout,
	}
}

// Jekyll returns the site wrapper. Callers that run build commands set
// Runner first; Clean and ServeCommand work without one.
func (e *Environment) Jekyll() *nbforge.Jekyll {
	return &nbforge.Jekyll{
		Root: e.Root(),
		Site: e.Config.Jekyll.Site,
		Port: e.Config.Jekyll.Port,
		Log:  e.Log,
	}
}

// Linters returns the lint wrapper bound to the given runner.
func (e *Environment) Linters(runner nbforge.Runner) *nbforge.Linters {
	return &nbforge.Linters{
		Runner:  runner,
		Paths:   e.Config.Lint.Paths,
		UseNbQA: e.Config.Lint.UseNbQA,
	}
}

// Act returns the act wrapper. act manages its own containers, so it
// always runs on the host.
func (e *Environment) Act() *nbforge.Act {
	return &nbforge.Act{Runner: e.Runner()}
}

// Notebooks discovers the notebook sources under the working root.
func (e *Environment) Notebooks() ([]nbforge.Notebook, error) {
	return nbforge.DiscoverNotebooks(e.Root(), e.Config.Paths.Notebooks)
}

// Jobs discovers the notebooks and maps their conversion outputs,
// failing on basename collisions before anything runs.
func (e *Environment) Jobs() ([]nbforge.ConvertJob, error) {
	notebooks, err := e.Notebooks()
	if err != nil {
		return nil, err
	}
	return nbforge.MapOutputs(notebooks, e.Config.Paths.Output, e.Format)
}

// Pause waits the configured number of seconds, or until cancellation.
// Container services need a moment before their logs carry anything
// useful.
func (e *Environment) Pause(ctx context.Context) error {
	d := time.Duration(e.Config.PauseSeconds) * time.Second
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
