package nbforge

import (
	"fmt"
	"sort"
	"strings"
)

// Format selects the nbconvert output format.
type Format string

// Supported nbconvert output formats.
const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatLaTeX    Format = "latex"
	FormatPDF      Format = "pdf"
	FormatWebPDF   Format = "webpdf"
	FormatRST      Format = "rst"
	FormatScript   Format = "script"
	FormatNotebook Format = "notebook"
)

// formatExtensions maps each format to the file extension nbconvert
// produces for it.
var formatExtensions = map[Format]string{
	FormatMarkdown: "md",
	FormatHTML:     "html",
	FormatLaTeX:    "tex",
	FormatPDF:      "pdf",
	FormatWebPDF:   "pdf",
	FormatRST:      "rst",
	FormatScript:   "py",
	FormatNotebook: "ipynb",
}

// ParseFormat validates a format selector from config or flags.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formatExtensions[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// Extension returns the output file extension without the leading dot,
// or "" for an unknown format.
func (f Format) Extension() string {
	return formatExtensions[f]
}

// String returns the nbconvert name of the format.
func (f Format) String() string {
	return string(f)
}

// Formats lists the supported format selectors, sorted for display.
func Formats() []string {
	names := make([]string, 0, len(formatExtensions))
	for f := range formatExtensions {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Notebook is a discovered notebook source. Paths are relative to the
// working root so the same argv works on the host and inside containers.
type Notebook struct {
	Path string // root-relative source path
	Rel  string // path relative to the notebooks directory
	Name string // basename without extension
}

// ConvertJob pairs a notebook with its derived output artifact.
type ConvertJob struct {
	Notebook Notebook
	Output   string // root-relative output path under the build output dir
}

// TaskResult records the outcome of one per-notebook operation.
type TaskResult struct {
	Notebook Notebook
	Output   string // produced artifact, when the operation yields one
	Err      error
}

// BatchReport aggregates per-notebook results for a batch operation.
type BatchReport struct {
	Results []TaskResult
}

// Succeeded counts the notebooks that completed without error.
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts the notebooks that errored.
func (r *BatchReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Successes returns the notebooks that completed without error, in order.
func (r *BatchReport) Successes() []Notebook {
	var ok []Notebook
	for _, res := range r.Results {
		if res.Err == nil {
			ok = append(ok, res.Notebook)
		}
	}
	return ok
}

// Err returns nil when every notebook succeeded, otherwise an error
// summarizing the failure count.
func (r *BatchReport) Err() error {
	failed := r.Failed()
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d notebooks failed", failed, len(r.Results))
}
