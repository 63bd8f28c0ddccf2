// Package cli implements the openupm command-line interface.
//
// Commands add and remove packages from a project's manifest, print a
// package's dependency graph and manage the packument cache. The CLI is
// built with cobra and logs through charmbracelet/log; --verbose (-v)
// enables debug output including registry and cache events.
//
// # Commands
//
//   - add: Add packages to Packages/manifest.json with their scopes
//   - remove: Remove packages and prune scopes nobody needs
//   - deps: Print the dependency graph of a package as a tree, DOT or SVG
//   - cache: Show or clear the packument cache
//   - completion: Generate shell completion scripts
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openupm/openupm-cli/pkg/buildinfo"
	"github.com/openupm/openupm-cli/pkg/cache"
	"github.com/openupm/openupm-cli/pkg/config"
	"github.com/openupm/openupm-cli/pkg/core/deps"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/integrations"
	"github.com/openupm/openupm-cli/pkg/integrations/hub"
	"github.com/openupm/openupm-cli/pkg/integrations/npm"
	"github.com/openupm/openupm-cli/pkg/observability"
	"github.com/openupm/openupm-cli/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completion scripts.
const appName = "openupm"

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

	// Global flags.
	registry   string
	noUpstream bool
	chdir      string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level registry, cache
// and HTTP events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.LogHooks{Logger: c.Logger}.Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "openupm manages packages of a Unity project",
		Long:         `openupm adds and removes packages in a Unity project's manifest, resolving each package's dependencies across the configured registries and declaring the scopes they need.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.registry, "registry", "", "registry to add packages from (default from config)")
	flags.BoolVar(&c.noUpstream, "no-upstream", false, "do not take requested packages from the Unity registry")
	flags.StringVarP(&c.chdir, "chdir", "c", "", "run in the given project directory")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the packument cache")
	flags.BoolVar(&c.refresh, "refresh", false, "ignore cached packuments and fetch them again")

	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and environment, then applies flags.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return config.Config{}, err
	}
	if c.registry != "" {
		cfg.Registry = c.registry
	}
	if c.noUpstream {
		cfg.Upstream = false
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	return cfg, cfg.Validate()
}

// projectDir returns the project the command operates on.
func (c *CLI) projectDir() (string, error) {
	dir := c.chdir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeInternal, err, "get working directory")
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "resolve %s", dir)
	}
	return abs, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// session bundles what a command needs to talk to registries.
type session struct {
	cfg    config.Config
	client *npm.Client
	cache  cache.Cache
	runner *pipeline.Runner
	logger *log.Logger
}

func (s *session) Close() error {
	for host, state := range s.client.BreakerStates() {
		if state == "open" {
			s.logger.Debug("circuit breaker open", "host", host)
		}
	}
	return s.cache.Close()
}

// newSession loads configuration and wires the registry client, cache and
// pipeline runner. Callers must Close the session.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	client := npm.NewClient(integrations.Options{
		Cache:   store,
		TTL:     cfg.Cache.TTL,
		Timeout: cfg.HTTP.Timeout,
		Retries: retries(cfg.HTTP.Retries),
	})
	logger := loggerFromContext(ctx)
	logger.Debug("session", "registry", cfg.Registry, "upstream", cfg.Upstream, "cache", cfg.Cache.Backend, "npm-session", client.Session())
	var fetcher deps.PackumentFetcher = client
	if c.refresh {
		fetcher = refreshFetcher{client}
	}
	return &session{
		cfg:    cfg,
		client: client,
		cache:  store,
		runner: pipeline.NewRunner(fetcher, hub.New(cfg.EditorsDir), logger),
		logger: logger,
	}, nil
}

// refreshFetcher fetches every packument from its registry, then updates
// the cache with it.
type refreshFetcher struct {
	client *npm.Client
}

func (f refreshFetcher) FetchPackument(ctx context.Context, registry upm.Registry, name upm.DomainName) (*upm.Packument, error) {
	return f.client.RefreshPackument(ctx, registry, name)
}

// retries maps the config value, where 0 means no retries, onto client
// options, where 0 selects the default.
func retries(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	}
	dir, err := config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
