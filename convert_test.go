package nbforge

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func testConverter(r Runner) *Converter {
	return &Converter{
		Runner:    r,
		Format:    FormatMarkdown,
		Theme:     "dark",
		Template:  "jekyll",
		FigureDir: "assets/images/{notebook_name}_files",
		OutputDir: "_jupyter/converted",
	}
}

func TestExecuteArgs(t *testing.T) {
	t.Parallel()

	c := testConverter(nil)
	nb := Notebook{Path: "_jupyter/notebooks/2024-01-15-intro.ipynb"}

	got := c.ExecuteArgs(nb)
	want := Command{
		Name: "jupyter",
		Args: []string{"nbconvert", "--to", "notebook", "--execute", "--inplace", nb.Path},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExecuteArgs() = %v, want %v", got, want)
	}
}

func TestConvertArgs(t *testing.T) {
	t.Parallel()

	c := testConverter(nil)
	nb := Notebook{Path: "_jupyter/notebooks/2024-01-15-intro.ipynb"}

	got := c.ConvertArgs(nb)
	want := []string{
		"nbconvert",
		"--to", "markdown",
		"--output-dir", "_jupyter/converted",
		"--template", "jekyll",
		"--theme", "dark",
		"--NbConvertApp.output_files_dir=assets/images/{notebook_name}_files",
		"--TagRemovePreprocessor.enabled=True",
		"--TagRemovePreprocessor.remove_cell_tags=remove_cell",
		"--TagRemovePreprocessor.remove_all_outputs_tags=remove_output",
		"--TagRemovePreprocessor.remove_input_tags=remove_input",
		`--RegexRemovePreprocessor.patterns=\s*\Z`,
		"--no-prompt",
		nb.Path,
	}
	if got.Name != "jupyter" {
		t.Errorf("ConvertArgs().Name = %q, want jupyter", got.Name)
	}
	if !reflect.DeepEqual(got.Args, want) {
		t.Errorf("ConvertArgs().Args =\n%v\nwant\n%v", got.Args, want)
	}
}

func TestConvertArgsOmitsEmptyOptions(t *testing.T) {
	t.Parallel()

	c := testConverter(nil)
	c.Theme = ""
	c.Template = ""

	args := strings.Join(c.ConvertArgs(Notebook{Path: "nb/a.ipynb"}).Args, " ")
	if strings.Contains(args, "--theme") {
		t.Error("ConvertArgs() includes --theme with no theme configured")
	}
	if strings.Contains(args, "--template") {
		t.Error("ConvertArgs() includes --template with no template configured")
	}
}

func TestClearOutputsArgs(t *testing.T) {
	t.Parallel()

	c := testConverter(nil)
	got := c.ClearOutputsArgs(Notebook{Path: "nb/a.ipynb"})
	want := []string{"nbconvert", "--clear-output", "--inplace", "nb/a.ipynb"}
	if !reflect.DeepEqual(got.Args, want) {
		t.Errorf("ClearOutputsArgs().Args = %v, want %v", got.Args, want)
	}
}

func TestExecuteAllContinuesPastFailures(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	runner.failures["broken.ipynb"] = errors.New("kernel died")
	c := testConverter(runner)

	notebooks := []Notebook{
		{Path: "nb/good.ipynb", Name: "good"},
		{Path: "nb/broken.ipynb", Name: "broken"},
		{Path: "nb/also-good.ipynb", Name: "also-good"},
	}

	report := c.ExecuteAll(context.Background(), notebooks)

	if got := len(report.Results); got != 3 {
		t.Fatalf("ExecuteAll() recorded %d results, want 3", got)
	}
	if report.Succeeded() != 2 || report.Failed() != 1 {
		t.Errorf("report = %d succeeded, %d failed; want 2, 1", report.Succeeded(), report.Failed())
	}
	if report.Err() == nil {
		t.Error("Err() = nil, want failure summary")
	}

	ok := report.Successes()
	if len(ok) != 2 || ok[0].Name != "good" || ok[1].Name != "also-good" {
		t.Errorf("Successes() = %v, want good and also-good", ok)
	}
}

func TestConvertAllReportsOutputs(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	c := testConverter(runner)

	jobs := []ConvertJob{
		{Notebook: Notebook{Path: "nb/a.ipynb", Name: "a"}, Output: "_jupyter/converted/a.md"},
		{Notebook: Notebook{Path: "nb/b.ipynb", Name: "b"}, Output: "_jupyter/converted/b.md"},
	}

	report := c.ConvertAll(context.Background(), jobs)

	if report.Failed() != 0 {
		t.Fatalf("ConvertAll() failed %d jobs: %+v", report.Failed(), report.Results)
	}
	if report.Results[0].Output != "_jupyter/converted/a.md" {
		t.Errorf("Results[0].Output = %q, want mapped artifact", report.Results[0].Output)
	}
	if got := runner.ranMatching("nbconvert"); got != 2 {
		t.Errorf("runner saw %d nbconvert invocations, want 2", got)
	}
}

func TestBatchStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	c := testConverter(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := c.ExecuteAll(ctx, []Notebook{
		{Path: "nb/a.ipynb", Name: "a"},
		{Path: "nb/b.ipynb", Name: "b"},
	})

	if len(report.Results) != 0 {
		t.Errorf("ExecuteAll() on cancelled context recorded %d results, want 0", len(report.Results))
	}
	if got := runner.ranMatching("nbconvert"); got != 0 {
		t.Errorf("runner saw %d invocations after cancel, want 0", got)
	}
}

func TestCustomJupyterExecutable(t *testing.T) {
	t.Parallel()

	c := testConverter(nil)
	c.Jupyter = "/opt/conda/bin/jupyter"

	if got := c.ExecuteArgs(Notebook{Path: "a.ipynb"}).Name; got != "/opt/conda/bin/jupyter" {
		t.Errorf("ExecuteArgs().Name = %q, want configured executable", got)
	}
}
