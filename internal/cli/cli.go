// Package cli implements the mip command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/buildinfo"
	"github.com/mip-org/mip/pkg/cache"
	"github.com/mip-org/mip/pkg/config"
	"github.com/mip-org/mip/pkg/index"
	"github.com/mip-org/mip/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "mip"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mip installs MATLAB packages and their dependencies",
		Long:         `mip is a package manager for MATLAB. It resolves dependencies against a remote package index, installs packages into ~/.mip/packages, and keeps the MATLAB integration in ~/.mip/matlab up to date.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.mip/config.toml)")

	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.setupCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once and memoizes it.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// openStore opens the package store at the configured location.
func (c *CLI) openStore() (*store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return store.New(cfg.PackagesDir)
}

// newIndexClient builds an index client with the configured cache backend.
// Cache setup failures degrade to no caching rather than blocking the command.
func (c *CLI) newIndexClient(ctx context.Context) (*index.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return index.NewClient(cfg.IndexURL, c.newCache(ctx, cfg), cfg.Cache.TTL()), nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache()
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			dir, _ = cacheDir()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/mip/).
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
