package nbforge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
	"github.com/littlemissdragon/nbforge/internal/postdate"
)

// postMeta is the frontmatter contract converted posts must satisfy
// before Jekyll will render them.
type postMeta struct {
	Layout string `yaml:"layout"`
	Title  string `yaml:"title"`
}

// imageRefPattern matches markdown image references and captures the target.
var imageRefPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)

// PostReport is the result of inspecting one converted post.
type PostReport struct {
	Path           string // inspected file
	Title          string
	Layout         string
	Date           time.Time // parsed from the filename prefix
	Slug           string
	Images         []string // image references found in the body
	MissingFigures []string // references that do not resolve under the figure root
	Problems       []string // human-readable findings; empty means publishable
}

// Ready reports whether the post satisfies the site contract.
func (r *PostReport) Ready() bool {
	return len(r.Problems) == 0
}

// InspectPost checks a converted post against the site contract:
// frontmatter carrying layout and title, a filename with a real
// YYYY-MM-DD- date prefix, and image references that resolve under
// figureRoot. Findings land in the report; the error return is for
// unreadable files only.
func InspectPost(path, figureRoot string) (*PostReport, error) {
	f, err := os.Open(path) // #nosec G304 -- inspecting caller-selected posts
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	defer f.Close()

	report := &PostReport{Path: path}

	var meta postMeta
	body, err := frontmatter.Parse(f, &meta)
	if err != nil {
		report.Problems = append(report.Problems, "unparseable frontmatter: "+err.Error())
		return report, nil
	}
	report.Layout = meta.Layout
	report.Title = meta.Title
	if meta.Layout == "" {
		report.Problems = append(report.Problems, "missing layout in frontmatter")
	}
	if meta.Title == "" {
		report.Problems = append(report.Problems, "missing title in frontmatter")
	}

	date, slug, err := postdate.Split(path)
	if err != nil {
		report.Problems = append(report.Problems, "filename lacks a valid YYYY-MM-DD- date prefix")
	} else {
		report.Date = date
		report.Slug = slug
	}

	for _, match := range imageRefPattern.FindAllStringSubmatch(string(body), -1) {
		ref := match[1]
		report.Images = append(report.Images, ref)
		if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
			continue
		}
		local := filepath.Join(figureRoot, strings.TrimPrefix(ref, "/"))
		if !fileutil.FileExists(local) {
			report.MissingFigures = append(report.MissingFigures, ref)
			report.Problems = append(report.Problems, "figure not found: "+ref)
		}
	}

	return report, nil
}
