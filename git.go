package nbforge

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Image name suffixes by container role.
const (
	jupyterImageSuffix = "_jupyter"
	testingImageSuffix = "_testing"
)

// Git wraps the git executable for the operations publishing needs.
type Git struct {
	Runner Runner
	Dir    string // repository root (empty = runner default)
}

func (g *Git) command(args ...string) Command {
	return Command{Name: "git", Args: args, Dir: g.Dir}
}

// Installed verifies the git executable is reachable.
func (g *Git) Installed(ctx context.Context) error {
	if _, err := g.Runner.Output(ctx, g.command("--version")); err != nil {
		return fmt.Errorf("%w: git", ErrExecutableNotFound)
	}
	return nil
}

// InsideWorkTree verifies the working root is a git work tree.
func (g *Git) InsideWorkTree(ctx context.Context) error {
	out, err := g.Runner.Output(ctx, g.command("rev-parse", "--is-inside-work-tree"))
	if err != nil || out != "true" {
		return fmt.Errorf("%w: %s", ErrNotAWorkTree, g.Dir)
	}
	return nil
}

// IsOwnershipSafe verifies git accepts the repository's on-disk
// ownership. Volume-mounted repositories trip git's dubious-ownership
// protection when the host uid differs from the container's.
func (g *Git) IsOwnershipSafe(ctx context.Context) error {
	if _, err := g.Runner.Output(ctx, g.command("status", "--porcelain")); err != nil {
		if strings.Contains(err.Error(), "dubious ownership") {
			return fmt.Errorf("%w: %s", ErrUnsafeRepository, g.Dir)
		}
		return err
	}
	return nil
}

// MarkSafeDirectory registers the repository as safe in the global git
// config, clearing dubious-ownership failures.
func (g *Git) MarkSafeDirectory(ctx context.Context, root string) error {
	return g.Runner.Run(ctx, g.command("config", "--global", "--add", "safe.directory", root))
}

// RemoteURL reads the configured URL of a remote.
func (g *Git) RemoteURL(ctx context.Context, remote string) (string, error) {
	return g.Runner.Output(ctx, g.command("config", "--get", "remote."+remote+".url"))
}

// CurrentBranch returns the checked-out branch name.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	return g.Runner.Output(ctx, g.command("rev-parse", "--abbrev-ref", "HEAD"))
}

// UntrackedFiles lists files under dir that git does not track,
// honoring ignore rules. Paths come back repository-relative.
func (g *Git) UntrackedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := g.Runner.Output(ctx, g.command("ls-files", "--others", "--exclude-standard", "--", dir))
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Add stages paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	return g.Runner.Run(ctx, g.command(append([]string{"add", "--"}, paths...)...))
}

// HasStagedChanges reports whether anything is staged for commit.
func (g *Git) HasStagedChanges(ctx context.Context) (bool, error) {
	out, err := g.Runner.Output(ctx, g.command("diff", "--cached", "--name-only"))
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit records staged changes.
func (g *Git) Commit(ctx context.Context, message string) error {
	return g.Runner.Run(ctx, g.command("commit", "-m", message))
}

// Push sends the branch to the remote.
func (g *Git) Push(ctx context.Context, remote, branch string) error {
	return g.Runner.Run(ctx, g.command("push", remote, branch))
}

// RepoIdentity names the repository a remote points at, plus the branch
// used for image tagging.
type RepoIdentity struct {
	User   string // lowercased GitHub user or org
	Repo   string
	Branch string
}

// ParseRemoteURL extracts the user and repository from a GitHub remote
// URL in HTTPS or SSH form. The user is lowercased to match registry
// path rules.
func ParseRemoteURL(url string) (RepoIdentity, error) {
	s := strings.TrimSpace(url)
	s = strings.TrimSuffix(s, ".git")

	var rest string
	switch {
	case strings.HasPrefix(s, "https://github.com/"):
		rest = strings.TrimPrefix(s, "https://github.com/")
	case strings.HasPrefix(s, "git@github.com:"):
		rest = strings.TrimPrefix(s, "git@github.com:")
	default:
		return RepoIdentity{}, fmt.Errorf("%w (%s)", ErrBadRemoteURL, url)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoIdentity{}, fmt.Errorf("%w (%s)", ErrBadRemoteURL, url)
	}
	return RepoIdentity{User: strings.ToLower(parts[0]), Repo: parts[1]}, nil
}

// JupyterImage returns the notebook-execution image name for this repo.
func (id RepoIdentity) JupyterImage(registry string) string {
	return fmt.Sprintf("%s/%s/%s:%s%s", registry, id.User, id.Repo, id.Branch, jupyterImageSuffix)
}

// TestingImage returns the lint-and-test image name for this repo.
func (id RepoIdentity) TestingImage(registry string) string {
	return fmt.Sprintf("%s/%s/%s:%s%s", registry, id.User, id.Repo, id.Branch, testingImageSuffix)
}

// SourcePath returns the in-container path the repository is mounted
// at. Container paths are always slash-separated.
func (id RepoIdentity) SourcePath(sourceRoot string) string {
	return path.Join(sourceRoot, id.Repo)
}

// ResolveIdentity reads the remote URL and branch from the repository.
// branchOverride skips branch detection when set.
func (g *Git) ResolveIdentity(ctx context.Context, remote, branchOverride string) (RepoIdentity, error) {
	url, err := g.RemoteURL(ctx, remote)
	if err != nil {
		return RepoIdentity{}, err
	}
	id, err := ParseRemoteURL(url)
	if err != nil {
		return RepoIdentity{}, err
	}

	id.Branch = branchOverride
	if id.Branch == "" {
		id.Branch, err = g.CurrentBranch(ctx)
		if err != nil {
			return RepoIdentity{}, err
		}
	}
	return id, nil
}
