package nbforge

import "errors"

// Sentinel errors for orchestration operations.
var (
	// Configuration and mapping errors.
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrOutputCollision = errors.New("output path collision")

	// Precondition errors, detected before the dependent task runs.
	ErrExecutableNotFound = errors.New("required executable not found")
	ErrImageNotFound      = errors.New("docker image not found")
	ErrNoBuildOutput      = errors.New("build output directory not found")
	ErrNotAWorkTree       = errors.New("not inside a git work tree")
	ErrUnsafeRepository   = errors.New("repository ownership is dubious")

	// Remote parsing errors.
	ErrBadRemoteURL = errors.New("invalid remote URL")

	// External command errors.
	ErrCommandFailed = errors.New("command failed")

	// Container record errors.
	ErrNoContainers = errors.New("no running containers recorded")

	// Post inspection errors.
	ErrNoFrontmatter = errors.New("post has no frontmatter")
)
