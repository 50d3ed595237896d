// Package cli implements the floorplan command-line interface.
//
// # Commands
//
//   - optimize: anneal a module list and write the best placement
//   - pack: place modules according to an explicit polish expression
//   - tree: draw the initial slicing tree (DOT or SVG)
//   - render: render a placement JSON file to SVG, PNG or PDF
//   - inspect: browse a placement interactively
//   - serve: run the HTTP API
//   - cache, config, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and
// --log-file to additionally write logs to a rotating file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/xianaiyang/vlsiFloorplan/pkg/buildinfo"
	"github.com/xianaiyang/vlsiFloorplan/pkg/cache"
	"github.com/xianaiyang/vlsiFloorplan/pkg/config"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "floorplan"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stderr     io.Writer
	configPath string
	logFile    string
	verbose    bool
	cfg        *config.Config
	logSink    io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stderr: w,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() *config.Config {
	return c.cfg
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Floorplan places rectangular modules with simulated annealing",
		Long: `Floorplan is a VLSI floorplanner. It arranges rectangular modules into a
slicing floorplan and searches for a small enclosing area by simulated
annealing over the slicing tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(false)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir/floorplan/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to this file (rotated)")

	// Register all subcommands
	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and attaches the log file. With allowMissing,
// a --config path that does not exist yet yields the defaults.
func (c *CLI) setup(allowMissing bool) error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.Load(c.configPath)
		if allowMissing && fperrors.Is(err, fperrors.ErrCodeFileNotFound) {
			c.cfg, err = config.Default(), nil
		}
	} else {
		c.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if c.verbose {
		c.Logger.SetLevel(log.DebugLevel)
	}
	// The config may only raise verbosity.
	if level := c.cfg.LogLevel(); level < c.Logger.GetLevel() {
		c.Logger.SetLevel(level)
	}

	path := c.logFile
	if path == "" {
		path = c.cfg.Log.File
	}
	if path == "" {
		return nil
	}
	sink, err := openLogFile(path, c.cfg.Log)
	if err != nil {
		return err
	}
	c.logSink = sink
	c.Logger.SetOutput(io.MultiWriter(c.stderr, sink))
	c.Logger.Debug("logging to file", "path", path)
	return nil
}

// Close releases the log file, if any.
func (c *CLI) Close() error {
	if c.logSink == nil {
		return nil
	}
	c.Logger.SetOutput(c.stderr)
	err := c.logSink.Close()
	c.logSink = nil
	return err
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.cfg.Cache.Redis)
	}

	dir := c.cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/floorplan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// An empty string yields nil so the configured formats apply.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
