package nbforge

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// CheckpointDirName is the Jupyter autosave directory. Discovery never
// descends into it, so autosaved copies are not built or published.
const CheckpointDirName = ".ipynb_checkpoints"

// NotebookExt is the notebook file extension.
const NotebookExt = ".ipynb"

// DiscoverNotebooks walks the notebooks directory under root and
// returns every notebook sorted by path. dir is root-relative, and so
// are the returned paths.
func DiscoverNotebooks(root, dir string) ([]Notebook, error) {
	base := filepath.Join(root, dir)

	var notebooks []Notebook
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if d.Name() == CheckpointDirName {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), NotebookExt) {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		notebooks = append(notebooks, Notebook{
			Path: filepath.Join(dir, rel),
			Rel:  rel,
			Name: name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(notebooks, func(i, j int) bool { return notebooks[i].Path < notebooks[j].Path })
	return notebooks, nil
}

// MapOutputs derives each notebook's output artifact under the build
// output directory. nbconvert writes by basename regardless of source
// nesting, so two notebooks sharing a basename collide; collisions are
// fatal before any conversion starts.
func MapOutputs(notebooks []Notebook, outDir string, format Format) ([]ConvertJob, error) {
	ext := format.Extension()
	if ext == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}

	jobs := make([]ConvertJob, 0, len(notebooks))
	seen := make(map[string]string, len(notebooks))
	for _, nb := range notebooks {
		out := filepath.Join(outDir, nb.Name+"."+ext)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%w: %s and %s both map to %s", ErrOutputCollision, prev, nb.Path, out)
		}
		seen[out] = nb.Path
		jobs = append(jobs, ConvertJob{Notebook: nb, Output: out})
	}
	return jobs, nil
}
