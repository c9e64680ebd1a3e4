package nbforge

import (
	"context"
)

// defaultJupyter is the executable used when none is configured.
const defaultJupyter = "jupyter"

// Tags that control cell stripping during conversion. Cells tagged in
// the notebook UI are removed from the published artifact.
const (
	tagRemoveCell   = "remove_cell"
	tagRemoveOutput = "remove_output"
	tagRemoveInput  = "remove_input"
)

// Converter builds and runs jupyter nbconvert invocations. All paths in
// the produced argv are root-relative, so the same Converter works with
// a host runner or a container runner.
type Converter struct {
	Runner    Runner
	Jupyter   string // executable, default "jupyter"
	Format    Format
	Theme     string // nbconvert --theme, empty = omit
	Template  string // nbconvert --template, empty = omit
	FigureDir string // output_files_dir pattern, {notebook_name} substituted by nbconvert
	OutputDir string // build output dir, root-relative
}

func (c *Converter) jupyter() string {
	if c.Jupyter == "" {
		return defaultJupyter
	}
	return c.Jupyter
}

// ExecuteArgs returns the invocation that runs a notebook top to bottom,
// writing results back in place.
func (c *Converter) ExecuteArgs(nb Notebook) Command {
	return Command{
		Name: c.jupyter(),
		Args: []string{"nbconvert", "--to", "notebook", "--execute", "--inplace", nb.Path},
	}
}

// ConvertArgs returns the invocation that converts an executed notebook
// into the configured format under the build output directory. Tagged
// cells are stripped and empty trailing cells dropped.
func (c *Converter) ConvertArgs(nb Notebook) Command {
	args := []string{
		"nbconvert",
		"--to", string(c.Format),
		"--output-dir", c.OutputDir,
	}
	if c.Template != "" {
		args = append(args, "--template", c.Template)
	}
	if c.Theme != "" {
		args = append(args, "--theme", c.Theme)
	}
	args = append(args,
		"--NbConvertApp.output_files_dir="+c.FigureDir,
		"--TagRemovePreprocessor.enabled=True",
		"--TagRemovePreprocessor.remove_cell_tags="+tagRemoveCell,
		"--TagRemovePreprocessor.remove_all_outputs_tags="+tagRemoveOutput,
		"--TagRemovePreprocessor.remove_input_tags="+tagRemoveInput,
		`--RegexRemovePreprocessor.patterns=\s*\Z`,
		"--no-prompt",
		nb.Path,
	)
	return Command{Name: c.jupyter(), Args: args}
}

// ClearOutputsArgs returns the invocation that strips stored outputs
// from a notebook in place.
func (c *Converter) ClearOutputsArgs(nb Notebook) Command {
	return Command{
		Name: c.jupyter(),
		Args: []string{"nbconvert", "--clear-output", "--inplace", nb.Path},
	}
}

// Execute runs one notebook in place.
func (c *Converter) Execute(ctx context.Context, nb Notebook) error {
	return c.Runner.Run(ctx, c.ExecuteArgs(nb))
}

// ConvertOne converts one executed notebook.
func (c *Converter) ConvertOne(ctx context.Context, nb Notebook) error {
	return c.Runner.Run(ctx, c.ConvertArgs(nb))
}

// ClearOutputs strips stored outputs from one notebook.
func (c *Converter) ClearOutputs(ctx context.Context, nb Notebook) error {
	return c.Runner.Run(ctx, c.ClearOutputsArgs(nb))
}

// ExecuteAll runs every notebook sequentially, continuing past failures.
// Processing stops early only when the context is cancelled.
func (c *Converter) ExecuteAll(ctx context.Context, notebooks []Notebook) *BatchReport {
	report := &BatchReport{}
	for _, nb := range notebooks {
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, TaskResult{
			Notebook: nb,
			Err:      c.Execute(ctx, nb),
		})
	}
	return report
}

// ConvertAll converts every job sequentially, continuing past failures.
func (c *Converter) ConvertAll(ctx context.Context, jobs []ConvertJob) *BatchReport {
	report := &BatchReport{}
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, TaskResult{
			Notebook: job.Notebook,
			Output:   job.Output,
			Err:      c.ConvertOne(ctx, job.Notebook),
		})
	}
	return report
}

// ClearAll strips outputs from every notebook sequentially.
func (c *Converter) ClearAll(ctx context.Context, notebooks []Notebook) *BatchReport {
	report := &BatchReport{}
	for _, nb := range notebooks {
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, TaskResult{
			Notebook: nb,
			Err:      c.ClearOutputs(ctx, nb),
		})
	}
	return report
}
