// Package config defines the nbforge configuration schema, defaults, and
// file loading. Precedence across sources is: CLI flags > environment
// variables > config file > defaults. The file layer is applied by Load,
// the env and flag layers by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/littlemissdragon/nbforge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrBadLogLevel    = errors.New("invalid log level")
)

// DefaultName is the config file basename searched for in the working root.
const DefaultName = "nbforge"

// Config holds all configuration for the blog build orchestrator.
type Config struct {
	Root         string        `yaml:"root"`         // working root (empty = current directory)
	LogLevel     string        `yaml:"logLevel"`     // debug, info, warn, error
	PauseSeconds int           `yaml:"pauseSeconds"` // wait after starting containers
	Convert      ConvertConfig `yaml:"convert"`
	Paths        PathsConfig   `yaml:"paths"`
	Git          GitConfig     `yaml:"git"`
	Docker       DockerConfig  `yaml:"docker"`
	Jupyter      JupyterConfig `yaml:"jupyter"`
	Jekyll       JekyllConfig  `yaml:"jekyll"`
	Lint         LintConfig    `yaml:"lint"`
}

// ConvertConfig defines notebook conversion options.
type ConvertConfig struct {
	Format    string `yaml:"format"`    // markdown, html, latex, pdf, webpdf, rst, script, notebook
	Theme     string `yaml:"theme"`     // nbconvert --theme
	Template  string `yaml:"template"`  // nbconvert --template
	FigureDir string `yaml:"figureDir"` // figure output pattern, {notebook_name} is substituted
}

// PathsConfig defines the content tree layout, relative to the working root.
type PathsConfig struct {
	Notebooks string `yaml:"notebooks"` // notebook sources
	Output    string `yaml:"output"`    // conversion build output
	Posts     string `yaml:"posts"`     // Jekyll posts consumed by the site
	Assets    string `yaml:"assets"`    // live image assets
}

// GitConfig defines publishing target options.
type GitConfig struct {
	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"` // empty = detect current branch
}

// DockerConfig defines container naming and run options.
type DockerConfig struct {
	Registry          string `yaml:"registry"`          // image registry host
	SourceRoot        string `yaml:"sourceRoot"`        // in-container parent of the repo mount
	JupyterImage      string `yaml:"jupyterImage"`      // override; empty = derive from repo identity
	TestsImage        string `yaml:"testsImage"`        // override; empty = derive from repo identity
	JupyterDockerfile string `yaml:"jupyterDockerfile"` // build file for the Jupyter image
	TestsDockerfile   string `yaml:"testsDockerfile"`   // build file for the testing image
	Pull              bool   `yaml:"pull"`              // docker pull before building
	NoCache           bool   `yaml:"noCache"`           // docker build --no-cache
	NoTTY             bool   `yaml:"noTTY"`             // -i instead of -it
	UseVolume         bool   `yaml:"useVolume"`         // mount the working root into containers
	UseUser           bool   `yaml:"useUser"`           // map the host uid:gid into containers
	Local             bool   `yaml:"local"`             // run jupyter and linters on the host instead
}

// JupyterConfig defines the Jupyter Lab container options.
type JupyterConfig struct {
	Port int `yaml:"port"`
}

// JekyllConfig defines site build and serve options.
type JekyllConfig struct {
	Port int    `yaml:"port"`
	Site string `yaml:"site"` // built site directory
}

// LintConfig defines lint and test wrapper options.
type LintConfig struct {
	UseNbQA bool     `yaml:"useNbqa"` // wrap linters with nbqa to cover notebooks
	Paths   []string `yaml:"paths"`   // lint targets, relative to the working root
}

// Default returns the configuration matching the conventional blog layout.
func Default() *Config {
	return &Config{
		Root:         "",
		LogLevel:     "info",
		PauseSeconds: 5,
		Convert: ConvertConfig{
			Format:    "markdown",
			Theme:     "dark",
			Template:  "jekyll",
			FigureDir: "assets/images/{notebook_name}_files",
		},
		Paths: PathsConfig{
			Notebooks: "_jupyter/notebooks",
			Output:    "_jupyter/converted",
			Posts:     "_posts",
			Assets:    "assets/images",
		},
		Git: GitConfig{
			Remote: "origin",
			Branch: "",
		},
		Docker: DockerConfig{
			Registry:          "ghcr.io",
			SourceRoot:        "/usr/local/src",
			JupyterDockerfile: "docker/Dockerfile.jupyter",
			TestsDockerfile:   "docker/Dockerfile.tests",
			Pull:              true,
			NoCache:           false,
			NoTTY:             false,
			UseVolume:         true,
			UseUser:           true,
			Local:             false,
		},
		Jupyter: JupyterConfig{Port: 8888},
		Jekyll:  JekyllConfig{Port: 4000, Site: "_site"},
		Lint: LintConfig{
			UseNbQA: false,
			Paths:   []string{"_jupyter/notebooks", "tests"},
		},
	}
}

// Validate checks the configuration for structural problems. The output
// format itself is validated where it is consumed, so a new format only
// needs registering in one place.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.PauseSeconds, validation.Min(0), validation.Max(3600)),
	); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if err := c.Paths.Validate(); err != nil {
		return fmt.Errorf("paths: %w", err)
	}
	if err := c.Git.Validate(); err != nil {
		return fmt.Errorf("git: %w", err)
	}
	if err := c.Docker.Validate(); err != nil {
		return fmt.Errorf("docker: %w", err)
	}
	if err := c.Jupyter.Validate(); err != nil {
		return fmt.Errorf("jupyter: %w", err)
	}
	if err := c.Jekyll.Validate(); err != nil {
		return fmt.Errorf("jekyll: %w", err)
	}
	return nil
}

// Validate checks conversion options.
func (c ConvertConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Format, validation.Required),
		validation.Field(&c.FigureDir, validation.Required),
	)
}

// Validate checks that every content directory is configured.
func (c PathsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Notebooks, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Posts, validation.Required),
		validation.Field(&c.Assets, validation.Required),
	)
}

// Validate checks publishing target options.
func (c GitConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Remote, validation.Required),
	)
}

// Validate checks container options.
func (c DockerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Registry, validation.Required),
		validation.Field(&c.SourceRoot, validation.Required),
	)
}

// Validate checks the Jupyter container options.
func (c JupyterConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Validate checks site build options.
func (c JekyllConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Site, validation.Required),
	)
}

// Level converts the configured log level into a slog level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrBadLogLevel, c.LogLevel)
	}
}

// Load reads a config file over the defaults. Fields absent from the file
// keep their default values. nameOrPath containing a path separator is
// used verbatim; otherwise it is resolved by name via resolvePath. A
// missing file is an error (no silent fallback).
func Load(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultName
	}

	var path string
	var err error
	if isFilePath(nameOrPath) {
		path = nameOrPath
	} else {
		path, err = resolvePath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := yamlutil.ReadFileStrict(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve loads nbforge.yaml (or .yml) from the given root when present,
// and falls back to defaults when no file exists. Explicit config paths
// should use Load instead so a missing file surfaces as an error.
func Resolve(root string) (*Config, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(root, DefaultName+ext)
		if fileExists(path) {
			return Load(path)
		}
	}
	return Default(), nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolvePath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/nbforge/
func resolvePath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "nbforge", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
