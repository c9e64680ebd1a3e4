package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/littlemissdragon/nbforge/internal/config"
)

// envConfig holds configuration read from environment variables. The
// variable names date back to the Makefile this tool replaced, so CI
// setups built around the Makefile keep working unchanged.
type envConfig struct {
	// Content tree
	NotebooksDir string // NBDIR: notebook sources
	OutputDir    string // OUTDR: conversion build output
	PostsDir     string // POSTDIR: Jekyll posts directory
	AssetsDir    string // ASSETDIR: live image assets

	// Conversion
	Format    string // OUTPUT_FORMAT: nbconvert output format
	Theme     string // THEME: nbconvert --theme
	Template  string // TEMPLATE: nbconvert --template
	FigureDir string // FIGDIR: figure output pattern

	// Logging and pacing
	LogLevel     string // LOG_LEVEL: debug, info, warn, error
	PauseSeconds *int   // PSECS: wait after starting containers

	// Publishing
	GitRemote string // GIT_REMOTE: publish remote
	GitBranch string // GIT_BRANCH: branch override

	// Docker
	Registry   string // DCKR_REGISTRY: image registry host
	SourceRoot string // DCKRSRC: in-container parent of the repo mount
	Pull       *bool  // DCKR_PULL: docker pull before building
	NoCache    *bool  // DCKR_NOCACHE: docker build --no-cache
	NoTTY      *bool  // NOTTY: -i instead of -it
	UseVolume  *bool  // USE_VOL: mount the working root into containers
	UseUser    *bool  // USE_USR: map the host uid:gid into containers

	// Services
	JupyterPort *int // JUPYTER_PORT: Lab port
	JekyllPort  *int // JEKYLL_PORT: site dev server port

	// Lint
	UseNbQA *bool // USE_NBQA: wrap linters with nbqa
}

// knownEnvVars lists valid NBFORGE_* environment variables.
// Used to detect typos and warn users about unknown variables. The
// Makefile-era names carry no common prefix, so they are not scanned.
var knownEnvVars = map[string]bool{
	"NBFORGE_CONFIG": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numeric or boolean values are ignored rather than fatal,
// leaving the lower-precedence value in place.
func loadEnvConfig() *envConfig {
	return &envConfig{
		NotebooksDir: os.Getenv("NBDIR"),
		OutputDir:    os.Getenv("OUTDR"),
		PostsDir:     os.Getenv("POSTDIR"),
		AssetsDir:    os.Getenv("ASSETDIR"),

		Format:    os.Getenv("OUTPUT_FORMAT"),
		Theme:     os.Getenv("THEME"),
		Template:  os.Getenv("TEMPLATE"),
		FigureDir: os.Getenv("FIGDIR"),

		LogLevel:     os.Getenv("LOG_LEVEL"),
		PauseSeconds: envInt("PSECS"),

		GitRemote: os.Getenv("GIT_REMOTE"),
		GitBranch: os.Getenv("GIT_BRANCH"),

		Registry:   os.Getenv("DCKR_REGISTRY"),
		SourceRoot: os.Getenv("DCKRSRC"),
		Pull:       envBool("DCKR_PULL"),
		NoCache:    envBool("DCKR_NOCACHE"),
		NoTTY:      envBool("NOTTY"),
		UseVolume:  envBool("USE_VOL"),
		UseUser:    envBool("USE_USR"),

		JupyterPort: envInt("JUPYTER_PORT"),
		JekyllPort:  envInt("JEKYLL_PORT"),

		UseNbQA: envBool("USE_NBQA"),
	}
}

// applyEnv overlays environment variables onto the config. A set
// variable overrides the file value: the environment was the Makefile's
// interface, so it outranks the YAML layer. Flags are applied later and
// win over both.
func applyEnv(cfg *config.Config) {
	applyEnvConfig(loadEnvConfig(), cfg)
}

func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.NotebooksDir != "" {
		cfg.Paths.Notebooks = env.NotebooksDir
	}
	if env.OutputDir != "" {
		cfg.Paths.Output = env.OutputDir
	}
	if env.PostsDir != "" {
		cfg.Paths.Posts = env.PostsDir
	}
	if env.AssetsDir != "" {
		cfg.Paths.Assets = env.AssetsDir
	}

	if env.Format != "" {
		cfg.Convert.Format = env.Format
	}
	if env.Theme != "" {
		cfg.Convert.Theme = env.Theme
	}
	if env.Template != "" {
		cfg.Convert.Template = env.Template
	}
	if env.FigureDir != "" {
		cfg.Convert.FigureDir = env.FigureDir
	}

	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.PauseSeconds != nil && *env.PauseSeconds >= 0 {
		cfg.PauseSeconds = *env.PauseSeconds
	}

	if env.GitRemote != "" {
		cfg.Git.Remote = env.GitRemote
	}
	if env.GitBranch != "" {
		cfg.Git.Branch = env.GitBranch
	}

	if env.Registry != "" {
		cfg.Docker.Registry = env.Registry
	}
	if env.SourceRoot != "" {
		cfg.Docker.SourceRoot = env.SourceRoot
	}
	if env.Pull != nil {
		cfg.Docker.Pull = *env.Pull
	}
	if env.NoCache != nil {
		cfg.Docker.NoCache = *env.NoCache
	}
	if env.NoTTY != nil {
		cfg.Docker.NoTTY = *env.NoTTY
	}
	if env.UseVolume != nil {
		cfg.Docker.UseVolume = *env.UseVolume
	}
	if env.UseUser != nil {
		cfg.Docker.UseUser = *env.UseUser
	}

	if env.JupyterPort != nil && *env.JupyterPort > 0 {
		cfg.Jupyter.Port = *env.JupyterPort
	}
	if env.JekyllPort != nil && *env.JekyllPort > 0 {
		cfg.Jekyll.Port = *env.JekyllPort
	}

	if env.UseNbQA != nil {
		cfg.Lint.UseNbQA = *env.UseNbQA
	}
}

// warnUnknownEnvVars logs warnings for unrecognized NBFORGE_* variables.
// Helps catch typos like NBFORGE_CONF instead of NBFORGE_CONFIG.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "NBFORGE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// envBool parses a boolean variable, nil when unset or malformed.
func envBool(name string) *bool {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// envInt parses an integer variable, nil when unset or malformed.
func envInt(name string) *int {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
