package nbforge

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBuildSpecArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec BuildSpec
		want []string
	}{
		{
			name: "cached",
			spec: BuildSpec{
				Image:      "ghcr.io/user/repo:main_jupyter",
				Dockerfile: "docker/Dockerfile.jupyter",
				Context:    ".",
			},
			want: []string{"build", "-f", "docker/Dockerfile.jupyter", "-t", "ghcr.io/user/repo:main_jupyter", "."},
		},
		{
			name: "no cache",
			spec: BuildSpec{
				Image:      "ghcr.io/user/repo:main_testing",
				Dockerfile: "docker/Dockerfile.tests",
				Context:    ".",
				NoCache:    true,
			},
			want: []string{"build", "-f", "docker/Dockerfile.tests", "-t", "ghcr.io/user/repo:main_testing", "--no-cache", "."},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.spec.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunSpecArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec RunSpec
		want []string
	}{
		{
			name: "bare image",
			spec: RunSpec{Image: "img"},
			want: []string{"run", "img"},
		},
		{
			name: "detached service with ports and mount",
			spec: RunSpec{
				Image:   "img",
				Detach:  true,
				Ports:   []string{"8888:8888"},
				Volume:  "/home/me/articles:/usr/local/src/articles",
				User:    "1000:1000",
				Workdir: "/usr/local/src/articles",
			},
			want: []string{
				"run", "-d",
				"-p", "8888:8888",
				"-v", "/home/me/articles:/usr/local/src/articles",
				"--user", "1000:1000",
				"-w", "/usr/local/src/articles",
				"img",
			},
		},
		{
			name: "one-shot command",
			spec: RunSpec{
				Image:   "img",
				Remove:  true,
				Command: []string{"jupyter", "--version"},
			},
			want: []string{"run", "--rm", "img", "jupyter", "--version"},
		},
		{
			name: "interactive shell",
			spec: RunSpec{
				Image:       "img",
				Remove:      true,
				Interactive: true,
				Command:     []string{"bash"},
			},
			want: []string{"run", "--rm", "-it", "img", "bash"},
		},
		{
			name: "interactive without tty",
			spec: RunSpec{
				Image:       "img",
				Remove:      true,
				Interactive: true,
				NoTTY:       true,
				Command:     []string{"bash"},
			},
			want: []string{"run", "--rm", "-i", "img", "bash"},
		},
		{
			name: "environment entries",
			spec: RunSpec{
				Image: "img",
				Env:   []string{"JUPYTER_PORT=8888", "TZ=UTC"},
			},
			want: []string{"run", "-e", "JUPYTER_PORT=8888", "-e", "TZ=UTC", "img"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.spec.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	d := &Docker{Runner: r}

	if err := d.ImageExists(context.Background(), "img"); err != nil {
		t.Errorf("ImageExists() error = %v", err)
	}

	r.failures["image inspect"] = errors.New("Error: No such image: img")
	if err := d.ImageExists(context.Background(), "img"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("ImageExists() error = %v, want ErrImageNotFound", err)
	}
}

func TestDockerStartForcesDetach(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	r.outputs["run"] = "abc123"
	d := &Docker{Runner: r}

	id, err := d.Start(context.Background(), RunSpec{Image: "img"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if id != "abc123" {
		t.Errorf("Start() = %q, want abc123", id)
	}
	if got := r.ran(); len(got) != 1 || !strings.Contains(got[0], "run -d") {
		t.Errorf("Start() ran %v, want a detached run", got)
	}
}

func TestFindLabURL(t *testing.T) {
	t.Parallel()

	logs := `[I 12:00:00 ServerApp] Jupyter Server is running at:
[I 12:00:00 ServerApp]     http://7f3a09b2c1d4:8888/lab?token=4f90aa3b2c
[I 12:00:00 ServerApp]  or http://127.0.0.1:8888/lab?token=4f90aa3b2c
`

	if got, want := FindLabURL(logs, 8888), "http://127.0.0.1:8888/lab?token=4f90aa3b2c"; got != want {
		t.Errorf("FindLabURL() = %q, want %q", got, want)
	}
	if got := FindLabURL(logs, 9999); got != "" {
		t.Errorf("FindLabURL() with wrong port = %q, want empty", got)
	}
	if got := FindLabURL("starting up...", 8888); got != "" {
		t.Errorf("FindLabURL() before ready = %q, want empty", got)
	}
}

func TestContainerRunnerRewrite(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	cr := &ContainerRunner{
		Docker: &Docker{Runner: r},
		Base: RunSpec{
			Image:   "ghcr.io/user/repo:main_jupyter",
			Volume:  "/home/me/articles:/usr/local/src/articles",
			User:    "1000:1000",
			Workdir: "/usr/local/src/articles",
		},
	}

	cmd := Command{Name: "jupyter", Args: []string{"nbconvert", "--version"}}
	if err := cr.Run(context.Background(), cmd); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := r.commands[0]
	want := Command{
		Name: "docker",
		Args: []string{
			"run", "--rm",
			"-v", "/home/me/articles:/usr/local/src/articles",
			"--user", "1000:1000",
			"-w", "/usr/local/src/articles",
			"ghcr.io/user/repo:main_jupyter",
			"jupyter", "nbconvert", "--version",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rewrite produced %+v, want %+v", got, want)
	}
}

func TestContainerRunnerRewriteOverrides(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	cr := &ContainerRunner{
		Docker: &Docker{Runner: r},
		Base: RunSpec{
			Image:   "img",
			Workdir: "/usr/local/src/articles",
			Env:     []string{"BASE=1"},
		},
	}

	cmd := Command{
		Name:        "bash",
		Dir:         "/tmp",
		Env:         []string{"EXTRA=2"},
		Interactive: true,
	}
	if _, err := cr.Output(context.Background(), cmd); err != nil {
		t.Fatalf("Output() error = %v", err)
	}

	got := r.commands[0]
	argv := strings.Join(got.Args, " ")
	if !strings.Contains(argv, "-w /tmp") {
		t.Errorf("rewrite argv = %q, want command dir as workdir", argv)
	}
	if !strings.Contains(argv, "-e BASE=1 -e EXTRA=2") {
		t.Errorf("rewrite argv = %q, want merged env", argv)
	}
	if !strings.Contains(argv, "-it") {
		t.Errorf("rewrite argv = %q, want interactive flags", argv)
	}
	if !got.Interactive {
		t.Error("rewrite dropped the interactive flag on the docker command")
	}
}

func TestContainersStartRecords(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	r.outputs["run"] = "abc123"
	c := &Containers{
		Docker: &Docker{Runner: r},
		Record: RecordLog{Path: filepath.Join(t.TempDir(), ContainerRecordName)},
	}

	id, err := c.Start(context.Background(), RunSpec{Image: "img"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if id != "abc123" {
		t.Errorf("Start() = %q, want abc123", id)
	}

	ids, err := c.Record.Read()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"abc123"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("record holds %v, want %v", ids, want)
	}
}

func TestContainersStopAll(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	c := &Containers{
		Docker: &Docker{Runner: r},
		Record: RecordLog{Path: filepath.Join(t.TempDir(), ContainerRecordName)},
	}
	if err := c.Record.Append("aaa", "bbb"); err != nil {
		t.Fatal(err)
	}

	stopped, err := c.StopAll(context.Background())
	if err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}
	if want := []string{"aaa", "bbb"}; !reflect.DeepEqual(stopped, want) {
		t.Errorf("StopAll() = %v, want %v", stopped, want)
	}

	ids, err := c.Record.Read()
	if err != nil {
		t.Fatal(err)
	}
	if ids != nil {
		t.Errorf("record after StopAll() = %v, want cleared", ids)
	}
}

func TestContainersStopAllPartialFailure(t *testing.T) {
	t.Parallel()

	r := newFakeRunner()
	r.failures["stop bbb"] = errors.New("Error response from daemon: no such container")
	c := &Containers{
		Docker: &Docker{Runner: r},
		Record: RecordLog{Path: filepath.Join(t.TempDir(), ContainerRecordName)},
	}
	if err := c.Record.Append("aaa", "bbb", "ccc"); err != nil {
		t.Fatal(err)
	}

	stopped, err := c.StopAll(context.Background())
	if err == nil {
		t.Fatal("StopAll() error = nil, want the stop failure")
	}
	if want := []string{"aaa", "ccc"}; !reflect.DeepEqual(stopped, want) {
		t.Errorf("StopAll() = %v, want %v", stopped, want)
	}

	// The record keeps only the container that would not stop.
	ids, readErr := c.Record.Read()
	if readErr != nil {
		t.Fatal(readErr)
	}
	if want := []string{"bbb"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("record after partial StopAll() = %v, want %v", ids, want)
	}
}

func TestContainersStopAllEmpty(t *testing.T) {
	t.Parallel()

	c := &Containers{
		Docker: &Docker{Runner: newFakeRunner()},
		Record: RecordLog{Path: filepath.Join(t.TempDir(), ContainerRecordName)},
	}

	if _, err := c.StopAll(context.Background()); !errors.Is(err, ErrNoContainers) {
		t.Errorf("StopAll() error = %v, want ErrNoContainers", err)
	}
}
