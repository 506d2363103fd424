// Package cli implements the carecard command-line interface.
//
// This package provides commands for generating plant care cards, fetching
// care data from the remote service, managing the plant database, and
// running the HTTP server. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Render a printable care card for a plant
//   - fetch: Fetch fresh care data without rendering
//   - list/show: Inspect the plant database
//   - import: Bulk-import plants from CSV
//   - catalog: Render a multi-page catalog of every plant
//   - verify: Check user feedback against stored care data
//   - serve: Run the HTTP API
//   - cache: Manage the remote response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/leafvessel/carecard/internal/server"
	"github.com/leafvessel/carecard/pkg/anthropic"
	"github.com/leafvessel/carecard/pkg/buildinfo"
	"github.com/leafvessel/carecard/pkg/cache"
	"github.com/leafvessel/carecard/pkg/card"
	"github.com/leafvessel/carecard/pkg/config"
	"github.com/leafvessel/carecard/pkg/pipeline"
	"github.com/leafvessel/carecard/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "carecard"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.Default(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Carecard generates printable plant care cards",
		Long:         `Carecard fetches houseplant care data, stores it locally, and renders printable 6x4 inch care cards with consistent layout and field limits.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			path := c.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/carecard/config.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Collaborator Factories
// =============================================================================

// newStore opens the configured persistence backend. The store writes with
// the same field limits the renderer uses.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.Config.Store.Backend == "mongo" {
		return store.OpenMongo(ctx, store.MongoConfig{
			URI:        c.Config.Store.MongoURI,
			Database:   c.Config.Store.MongoDatabase,
			Collection: c.Config.Store.MongoCollection,
			Limits:     c.Config.FieldLimits(),
		})
	}
	return store.OpenSQLite(c.Config.Paths.Database, c.Config.FieldLimits())
}

// newCache opens the configured response cache. Cache failures degrade to
// the null cache; caching is an optimization, never a requirement.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache()
	}
	if c.Config.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable; continuing without cache", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	fc, err := cache.NewFileCache(config.CacheDir())
	if err != nil {
		c.Logger.Warn("file cache unavailable; continuing without cache", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newClient creates the remote care data client from the configuration.
func (c *CLI) newClient() *anthropic.Client {
	opts := []anthropic.Option{
		anthropic.WithLogger(c.Logger),
		anthropic.WithRetry(c.Config.API.MaxRetries, c.Config.API.BaseDelay()),
	}
	if c.Config.API.Model != "" {
		opts = append(opts, anthropic.WithModel(c.Config.API.Model))
	}
	if t := c.Config.API.Timeout(); t > 0 {
		opts = append(opts, anthropic.WithHTTPClient(&http.Client{Timeout: t}))
	}
	return anthropic.NewClient(c.Config.API.Key, opts...)
}

// newEngine creates the layout engine with the configured logo.
func (c *CLI) newEngine() *card.Engine {
	return card.NewEngine(
		card.WithLogo(c.Config.Paths.Logo),
		card.WithLogger(c.Logger),
	)
}

// newRunner wires a pipeline runner for CLI use. The caller owns the
// returned store and must close it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, store.Store, error) {
	st, err := c.newStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	assembler := card.NewAssembler(
		card.WithTemplate(c.Config.Paths.Template),
		card.WithAssemblerLogger(c.Logger),
	)
	runner := pipeline.NewRunner(st, c.newClient(), c.newCache(ctx, noCache), c.newEngine(), assembler, c.Logger)
	runner.Limits = c.Config.FieldLimits()
	return runner, st, nil
}

// newServer wires the HTTP server.
func (c *CLI) newServer(ctx context.Context) (*server.Server, store.Store, error) {
	runner, st, err := c.newRunner(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return server.New(runner, st, c.Logger), st, nil
}
