// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/littlemissdragon/nbforge/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForDubiousOwnership returns hints for git "dubious ownership" failures,
// which show up when the repository is volume-mounted into a container
// under a different uid.
func ForDubiousOwnership(root string) string {
	hints := []string{"run 'nbforge safe-repository' to mark " + root + " as safe"}
	if IsInContainer() {
		hints = append(hints, "volume mounts keep the host owner, so git refuses the repo by default")
	}
	return formatHints(hints)
}

// ForMissingImage returns hints for docker image not found errors.
func ForMissingImage(image, buildTask string) string {
	return format("run 'nbforge " + buildTask + "' to build " + image)
}

// ForNoBuildOutput returns hints for a missing conversion output directory.
func ForNoBuildOutput() string {
	return format("run 'nbforge convert' to produce build output first")
}

// ForUntrackedPosts returns the remediation hint for drift reports.
func ForUntrackedPosts() string {
	return format("run 'nbforge clear-renamed' to remove untracked posts and their image directories")
}

// ForMissingSite returns hints for a missing built-site directory.
func ForMissingSite() string {
	return format("run 'nbforge build-site' to build the site first")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/nbforge/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/nbforge) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/nbforge") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForMissingExecutable returns install hints for required external tools.
func ForMissingExecutable(name string) string {
	switch name {
	case "jupyter":
		return format("install JupyterLab (pip install jupyterlab nbconvert) or run through docker")
	case "docker":
		return format("install Docker Engine, or set docker.local to run tools on the host")
	case "git":
		return format("install git and re-run")
	case "bundle":
		return format("install Ruby and run 'gem install bundler'")
	case "act":
		return format("run 'nbforge install-act' to fetch the act binary")
	default:
		return format("install " + name + " and make sure it is on PATH")
	}
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
