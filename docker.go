package nbforge

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// Docker wraps the docker executable.
type Docker struct {
	Runner Runner
}

// BuildSpec describes a docker build invocation.
type BuildSpec struct {
	Image      string
	Dockerfile string
	Context    string // build context directory
	NoCache    bool
}

// Args renders the docker build argv.
func (s BuildSpec) Args() []string {
	args := []string{"build", "-f", s.Dockerfile, "-t", s.Image}
	if s.NoCache {
		args = append(args, "--no-cache")
	}
	return append(args, s.Context)
}

// RunSpec describes a docker run invocation.
type RunSpec struct {
	Image       string
	Command     []string // command and arguments inside the container
	Detach      bool     // -d, long-running services
	Remove      bool     // --rm, one-shot runs
	Interactive bool     // attach a terminal: -it, degraded to -i when NoTTY
	NoTTY       bool     // no TTY available (CI, piped input)
	Volume      string   // host:container bind mount, empty = none
	User        string   // uid:gid mapping, empty = container default
	Workdir     string   // in-container working directory
	Ports       []string // host:container publish specs
	Env         []string // KEY=VALUE entries
}

// Args renders the docker run argv.
func (s RunSpec) Args() []string {
	args := []string{"run"}
	if s.Detach {
		args = append(args, "-d")
	}
	if s.Remove {
		args = append(args, "--rm")
	}
	if s.Interactive {
		if s.NoTTY {
			args = append(args, "-i")
		} else {
			args = append(args, "-it")
		}
	}
	for _, p := range s.Ports {
		args = append(args, "-p", p)
	}
	if s.Volume != "" {
		args = append(args, "-v", s.Volume)
	}
	if s.User != "" {
		args = append(args, "--user", s.User)
	}
	if s.Workdir != "" {
		args = append(args, "-w", s.Workdir)
	}
	for _, e := range s.Env {
		args = append(args, "-e", e)
	}
	args = append(args, s.Image)
	return append(args, s.Command...)
}

// Installed verifies the docker executable is reachable.
func (d *Docker) Installed(ctx context.Context) error {
	if _, err := d.Runner.Output(ctx, Command{Name: "docker", Args: []string{"--version"}}); err != nil {
		return fmt.Errorf("%w: docker", ErrExecutableNotFound)
	}
	return nil
}

// ImageExists verifies an image is present locally.
func (d *Docker) ImageExists(ctx context.Context, image string) error {
	args := []string{"image", "inspect", "--format", "{{.Id}}", image}
	if _, err := d.Runner.Output(ctx, Command{Name: "docker", Args: args}); err != nil {
		return fmt.Errorf("%w: %s", ErrImageNotFound, image)
	}
	return nil
}

// Pull fetches an image from its registry. Callers building images
// treat pull failures as non-fatal: the published image may not exist
// yet for this branch.
func (d *Docker) Pull(ctx context.Context, image string) error {
	return d.Runner.Run(ctx, Command{Name: "docker", Args: []string{"pull", image}})
}

// Build builds an image.
func (d *Docker) Build(ctx context.Context, spec BuildSpec) error {
	return d.Runner.Run(ctx, Command{Name: "docker", Args: spec.Args()})
}

// Start launches a detached container and returns its ID.
func (d *Docker) Start(ctx context.Context, spec RunSpec) (string, error) {
	spec.Detach = true
	return d.Runner.Output(ctx, Command{Name: "docker", Args: spec.Args()})
}

// Run executes a foreground container, streaming its output.
func (d *Docker) Run(ctx context.Context, spec RunSpec) error {
	return d.Runner.Run(ctx, Command{
		Name:        "docker",
		Args:        spec.Args(),
		Interactive: spec.Interactive,
	})
}

// Logs captures a container's log output.
func (d *Docker) Logs(ctx context.Context, containerID string) (string, error) {
	return d.Runner.Output(ctx, Command{Name: "docker", Args: []string{"logs", containerID}})
}

// PS streams the running-container listing, optionally filtered.
func (d *Docker) PS(ctx context.Context, filters ...string) error {
	args := []string{"ps"}
	for _, f := range filters {
		args = append(args, "--filter", f)
	}
	return d.Runner.Run(ctx, Command{Name: "docker", Args: args})
}

// Stop stops a running container.
func (d *Docker) Stop(ctx context.Context, containerID string) error {
	return d.Runner.Run(ctx, Command{Name: "docker", Args: []string{"stop", containerID}})
}

// FindLabURL extracts the authenticated Jupyter Lab URL from container
// logs, or "" when the server has not printed it yet.
func FindLabURL(logs string, port int) string {
	re := regexp.MustCompile(`http://127\.0\.0\.1:` + strconv.Itoa(port) + `/lab\?token=[0-9a-f]+`)
	return re.FindString(logs)
}

// ContainerRunner rewrites commands to run inside a one-shot docker
// container, so conversion and lint code stays docker-unaware. The
// base spec carries the image, mount, user mapping, and workdir; each
// command becomes the container's argv.
type ContainerRunner struct {
	Docker *Docker
	Base   RunSpec
}

// Run executes the command inside the container.
func (r *ContainerRunner) Run(ctx context.Context, cmd Command) error {
	return r.Docker.Runner.Run(ctx, r.rewrite(cmd))
}

// Output executes the command inside the container, capturing stdout.
func (r *ContainerRunner) Output(ctx context.Context, cmd Command) (string, error) {
	return r.Docker.Runner.Output(ctx, r.rewrite(cmd))
}

func (r *ContainerRunner) rewrite(cmd Command) Command {
	spec := r.Base
	spec.Remove = true
	spec.Command = append([]string{cmd.Name}, cmd.Args...)
	if cmd.Dir != "" {
		spec.Workdir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		spec.Env = append(append([]string{}, spec.Env...), cmd.Env...)
	}
	if cmd.Interactive {
		spec.Interactive = true
	}
	return Command{
		Name:        "docker",
		Args:        spec.Args(),
		Interactive: cmd.Interactive,
	}
}

// Containers manages containers started by this tool through the
// running-container record.
type Containers struct {
	Docker *Docker
	Record RecordLog
}

// Start launches a detached container and records its ID.
func (c *Containers) Start(ctx context.Context, spec RunSpec) (string, error) {
	id, err := c.Docker.Start(ctx, spec)
	if err != nil {
		return "", err
	}
	if err := c.Record.Append(id); err != nil {
		return id, err
	}
	return id, nil
}

// StopAll stops every recorded container. On full success the record
// is cleared; on partial failure it is rewritten with the containers
// that are still running, and the first stop error is returned.
func (c *Containers) StopAll(ctx context.Context) ([]string, error) {
	ids, err := c.Record.Read()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoContainers
	}

	var stopped, remaining []string
	var firstErr error
	for _, id := range ids {
		if err := c.Docker.Stop(ctx, id); err != nil {
			remaining = append(remaining, id)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stopped = append(stopped, id)
	}

	if err := c.Record.Clear(); err != nil {
		return stopped, err
	}
	if len(remaining) > 0 {
		if err := c.Record.Append(remaining...); err != nil {
			return stopped, err
		}
		return stopped, firstErr
	}
	return stopped, nil
}
