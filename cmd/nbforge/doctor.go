package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/fileutil"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string      `json:"status"` // "ready", "warnings", "errors"
	Tools      toolsInfo   `json:"tools"`
	Repository repoInfo    `json:"repository"`
	Tree       treeInfo    `json:"tree"`
	Records    recordsInfo `json:"records"`
	Warnings   []string    `json:"warnings,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
}

// toolsInfo holds executable detection results.
type toolsInfo struct {
	Docker  bool `json:"docker"`
	Git     bool `json:"git"`
	Jupyter bool `json:"jupyter"`
	Bundle  bool `json:"bundle"`
	Act     bool `json:"act"`
}

// repoInfo holds repository detection results.
type repoInfo struct {
	WorkTree  bool   `json:"work_tree"`
	Safe      bool   `json:"safe"`
	User      string `json:"user,omitempty"`
	Repo      string `json:"repo,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Container bool   `json:"container"`
}

// treeInfo holds content tree results.
type treeInfo struct {
	NotebooksDir bool `json:"notebooks_dir"`
	Notebooks    int  `json:"notebooks"`
	OutputDir    bool `json:"output_dir"`
	PostsDir     bool `json:"posts_dir"`
	AssetsDir    bool `json:"assets_dir"`
	TempWritable bool `json:"temp_writable"`
}

// recordsInfo holds record file results.
type recordsInfo struct {
	Containers int `json:"containers"`
	Synced     int `json:"synced"`
}

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the environment without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := runDoctor(cmd.Context())

		if doctorJSON {
			enc := json.NewEncoder(env.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(result)
		} else {
			printDoctorResult(env.Stdout, result)
		}

		if result.Status == "errors" {
			return errors.New("doctor found problems")
		}
		return nil
	},
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context) *doctorResult {
	result := &doctorResult{Status: "ready"}

	checkTools(result)
	checkRepository(ctx, result)
	checkTree(result)
	checkRecords(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkTools detects the external executables each task family needs.
func checkTools(result *doctorResult) {
	result.Tools.Docker = nbforge.LookPath("docker") == nil
	result.Tools.Git = nbforge.LookPath("git") == nil
	result.Tools.Jupyter = nbforge.LookPath("jupyter") == nil
	result.Tools.Bundle = nbforge.LookPath("bundle") == nil
	result.Tools.Act = nbforge.LookPath("act") == nil

	local := env.Config.Docker.Local
	if local {
		if !result.Tools.Jupyter {
			result.Errors = append(result.Errors,
				"jupyter not found and docker.local is set; install JupyterLab or unset docker.local")
		}
		if !result.Tools.Bundle {
			result.Warnings = append(result.Warnings,
				"bundle not found; site builds will fail while docker.local is set")
		}
	} else if !result.Tools.Docker {
		result.Errors = append(result.Errors,
			"docker not found; conversion and site tasks run in containers")
	}
	if !result.Tools.Git {
		result.Errors = append(result.Errors,
			"git not found; image naming and publishing need it")
	}
	if !result.Tools.Act {
		result.Warnings = append(result.Warnings,
			"act not found; run 'nbforge install-act' to enable local workflow runs")
	}
}

// checkRepository inspects the git side of the working root.
func checkRepository(ctx context.Context, result *doctorResult) {
	result.Repository.Container = hints.IsInContainer()
	if !result.Tools.Git {
		return
	}

	g := env.Git()
	result.Repository.WorkTree = g.InsideWorkTree(ctx) == nil
	if !result.Repository.WorkTree {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s is not a git work tree; commit and push will fail", env.Root()))
		return
	}

	result.Repository.Safe = g.IsOwnershipSafe(ctx) == nil
	if !result.Repository.Safe {
		result.Warnings = append(result.Warnings,
			"repository ownership is dubious; run 'nbforge safe-repository'")
	}

	id, err := env.Identity(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not resolve repository identity: %v", err))
		return
	}
	result.Repository.User = id.User
	result.Repository.Repo = id.Repo
	result.Repository.Branch = id.Branch
}

// checkTree inspects the content directories.
func checkTree(result *doctorResult) {
	cfg := env.Config
	root := env.Root()

	result.Tree.NotebooksDir = fileutil.DirExists(filepath.Join(root, cfg.Paths.Notebooks))
	if !result.Tree.NotebooksDir {
		result.Errors = append(result.Errors,
			fmt.Sprintf("notebooks directory %s does not exist", cfg.Paths.Notebooks))
	} else if notebooks, err := env.Notebooks(); err == nil {
		result.Tree.Notebooks = len(notebooks)
	}

	result.Tree.OutputDir = fileutil.DirExists(filepath.Join(root, cfg.Paths.Output))
	result.Tree.PostsDir = fileutil.DirExists(filepath.Join(root, cfg.Paths.Posts))
	if !result.Tree.PostsDir {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("posts directory %s does not exist; is this a Jekyll site?", cfg.Paths.Posts))
	}
	result.Tree.AssetsDir = fileutil.DirExists(filepath.Join(root, cfg.Paths.Assets))

	// Check temp directory is writable: installers and record rewrites
	// stage files there.
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "nbforge-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.Tree.TempWritable = true
	}
}

// checkRecords counts the entries in the record files.
func checkRecords(result *doctorResult) {
	if ids, err := env.Containers().Record.Read(); err == nil {
		result.Records.Containers = len(ids)
	}
	if entries, err := env.Manifest().Read(); err == nil {
		result.Records.Synced = len(entries)
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "nbforge doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleHeading.Render("Tools"))
	printTool := func(name string, found bool) {
		if found {
			fmt.Fprintln(w, markOK(name+": found"))
		} else {
			fmt.Fprintln(w, markWarn(name+": not found"))
		}
	}
	printTool("docker", r.Tools.Docker)
	printTool("git", r.Tools.Git)
	printTool("jupyter", r.Tools.Jupyter)
	printTool("bundle", r.Tools.Bundle)
	printTool("act", r.Tools.Act)
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleHeading.Render("Repository"))
	if r.Repository.WorkTree {
		fmt.Fprintln(w, markOK("work tree: yes"))
		if r.Repository.Safe {
			fmt.Fprintln(w, markOK("ownership: safe"))
		} else {
			fmt.Fprintln(w, markWarn("ownership: dubious"))
		}
		if r.Repository.Repo != "" {
			fmt.Fprintln(w, markOK(fmt.Sprintf("identity: %s/%s @ %s",
				r.Repository.User, r.Repository.Repo, r.Repository.Branch)))
		}
	} else {
		fmt.Fprintln(w, markWarn("work tree: no"))
	}
	if r.Repository.Container {
		fmt.Fprintln(w, markMuted("running inside a container"))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleHeading.Render("Content tree"))
	if r.Tree.NotebooksDir {
		fmt.Fprintln(w, markOK("notebooks: "+strconv.Itoa(r.Tree.Notebooks)+" found"))
	} else {
		fmt.Fprintln(w, markError("notebooks directory missing"))
	}
	if r.Tree.OutputDir {
		fmt.Fprintln(w, markOK("build output: present"))
	} else {
		fmt.Fprintln(w, markMuted("build output: none yet"))
	}
	if r.Tree.PostsDir {
		fmt.Fprintln(w, markOK("posts directory: present"))
	} else {
		fmt.Fprintln(w, markWarn("posts directory: missing"))
	}
	if r.Tree.TempWritable {
		fmt.Fprintln(w, markOK("temp directory: writable"))
	} else {
		fmt.Fprintln(w, markError("temp directory: not writable"))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, styleHeading.Render("Records"))
	fmt.Fprintln(w, markOK(fmt.Sprintf("containers recorded: %d", r.Records.Containers)))
	fmt.Fprintln(w, markOK(fmt.Sprintf("synced files recorded: %d", r.Records.Synced)))
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintln(w, markWarn(warn))
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintln(w, markError(err))
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "emit machine-readable JSON")
	rootCmd.AddCommand(doctorCmd)
}
