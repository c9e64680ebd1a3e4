package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	nbforge "github.com/littlemissdragon/nbforge"
	"github.com/littlemissdragon/nbforge/internal/config"
	"github.com/littlemissdragon/nbforge/internal/hints"
)

// Persistent flag values. Environment variables cover the same knobs
// for the Makefile-era workflow; flags win when both are set.
var (
	flagConfig  string
	flagRoot    string
	flagFormat  string
	flagBranch  string
	flagVerbose bool
	flagQuiet   bool
)

// env is built once per invocation by setup and shared by every command.
var env *Environment

var rootCmd = &cobra.Command{
	Use:   "nbforge",
	Short: "Build and publish a Jekyll blog from Jupyter notebooks",
	Long: `nbforge drives a notebook-backed Jekyll blog: it executes and
converts notebooks with jupyter nbconvert, syncs the converted posts and
figures into the site tree, reconciles leftovers after notebook renames,
and commits and pushes the result.

Conversion, linting, and site builds normally run inside the repository's
docker images; set docker.local in nbforge.yaml to run them on the host.

Configuration is read from nbforge.yaml in the working root, overridden
by environment variables (the original Makefile names: NBDIR, OUTDR,
OUTPUT_FORMAT, DCKR_PULL, ...), overridden in turn by flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Help and completion must work without a repository around.
		switch cmd.Name() {
		case "help", "completion", "version":
			return nil
		}
		return setup(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "config file path (default nbforge.yaml in the root)")
	pf.StringVarP(&flagRoot, "root", "r", "", "working root (default $CURRENTDIR or the current directory)")
	pf.VarP(newFormatValue(&flagFormat), "format", "f",
		"conversion output format ("+strings.Join(nbforge.Formats(), ", ")+")")
	pf.StringVarP(&flagBranch, "branch", "b", "", "git branch for image naming and push (default: current branch)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "errors only")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
}

// setup resolves the working root and configuration, applying the
// flags > environment > file > defaults precedence, and builds the
// shared Environment.
func setup(cmd *cobra.Command) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(root)
	if err != nil {
		if isConfigNotFound(err) {
			return fmt.Errorf("%w%s", err, hints.ForConfigNotFound(nil))
		}
		return err
	}

	applyEnv(cfg)
	applyFlags(cmd, cfg)
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	env, err = NewEnvironment(cfg)
	if err != nil {
		return err
	}
	warnUnknownEnvVars(env.Stderr)
	return nil
}

// resolveRoot picks the working root: --root, then $CURRENTDIR, then
// the current directory, always absolute.
func resolveRoot() (string, error) {
	root := flagRoot
	if root == "" {
		root = os.Getenv("CURRENTDIR")
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working root: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving working root: %w", err)
	}
	return abs, nil
}

// loadConfig picks the config source: --config, then $NBFORGE_CONFIG,
// then nbforge.yaml in the root, then pure defaults.
func loadConfig(root string) (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	if path := os.Getenv("NBFORGE_CONFIG"); path != "" {
		return config.Load(path)
	}
	return config.Resolve(root)
}

// applyFlags overlays explicitly set flags onto the configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	pf := cmd.Root().PersistentFlags()
	if pf.Changed("format") {
		cfg.Convert.Format = flagFormat
	}
	if pf.Changed("branch") {
		cfg.Git.Branch = flagBranch
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
	}
	if flagQuiet {
		cfg.LogLevel = "error"
	}
}

// formatValue validates --format at parse time against the known
// conversion formats.
type formatValue struct {
	target *string
}

func newFormatValue(target *string) *formatValue {
	return &formatValue{target: target}
}

func (v *formatValue) String() string { return *v.target }

func (v *formatValue) Set(raw string) error {
	f, err := nbforge.ParseFormat(raw)
	if err != nil {
		return err
	}
	*v.target = string(f)
	return nil
}

func (v *formatValue) Type() string { return "format" }

var _ pflag.Value = (*formatValue)(nil)
