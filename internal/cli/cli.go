// Package cli implements the loomviz command-line interface.
//
// Commands:
//   - list: table of the APIs in a feed
//   - show: pipeline and step graph of one API
//   - render: fitted SVG of one API
//   - browse: interactive terminal browser
//   - serve: HTTP viewer
//   - cache: manage the artifact cache
//
// Every command reads the feed through the same store and selection
// controller the viewer uses, so what the terminal prints and what the
// browser draws cannot drift apart.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/internal/config"
	"github.com/matzehuels/loomviz/internal/telemetry"
	"github.com/matzehuels/loomviz/pkg/buildinfo"
	"github.com/matzehuels/loomviz/pkg/cache"
	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/layout"
	"github.com/matzehuels/loomviz/pkg/layout/graphviz"
	"github.com/matzehuels/loomviz/pkg/layout/layered"
	"github.com/matzehuels/loomviz/pkg/observability"
	"github.com/matzehuels/loomviz/pkg/selection"
	"github.com/matzehuels/loomviz/pkg/source"
	"github.com/matzehuels/loomviz/pkg/store"
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
	out    io.Writer

	configPath string
	flags      globalFlags
	cfg        config.Config

	closers []func() error
}

// globalFlags override config values when set.
type globalFlags struct {
	feed     string
	file     string
	engine   string
	cache    string
	noCache  bool
	refresh  bool
	trace    bool
	terminal bool
}

// New creates a CLI logging to w at level. Command output goes to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "loomviz",
		Short: "loomviz shows how loom services handle each API",
		Long: `loomviz reads the API descriptor feed of a loom service and shows, for each
endpoint, the interceptor pipeline and the graph of processing steps behind it.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default ~/.config/loomviz/config.toml)")
	pf.StringVar(&c.flags.feed, "feed", "", "feed URL, e.g. http://localhost:8080 (env "+config.EnvFeedURL+")")
	pf.StringVar(&c.flags.file, "file", "", "read the feed from a JSON file instead of a URL")
	pf.StringVar(&c.flags.engine, "engine", "", "layout engine: layered, graphviz")
	pf.StringVar(&c.flags.cache, "cache", "", "cache: none, a directory, redis://..., mongodb://... (env "+config.EnvCache+")")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "ignore cached feed snapshots")
	pf.BoolVar(&c.flags.trace, "trace", false, "export OpenTelemetry spans to stderr")
	pf.BoolVar(&c.flags.terminal, "mark-terminal", false, "append a terminal marker to terminal step labels")

	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, applies flags and installs hooks.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("feed") {
		cfg.FeedURL = c.flags.feed
	}
	if f.Changed("file") {
		cfg.FeedFile = c.flags.file
	}
	if f.Changed("engine") {
		cfg.Layout.Engine = c.flags.engine
	}
	if f.Changed("cache") {
		cfg.Cache.URL = c.flags.cache
	}
	if c.flags.noCache {
		cfg.Cache.URL = "none"
	}
	if f.Changed("mark-terminal") {
		cfg.Graph.MarkTerminal = c.flags.terminal
	}
	if c.flags.trace {
		cfg.Trace = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	var hooks observability.Multi
	hooks = append(hooks, observability.LogHooks{Logger: c.Logger})
	if cfg.Trace {
		shutdown, err := telemetry.InitTracer(os.Stderr, c.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, func() error { return shutdown(context.Background()) })
		hooks = append(hooks, telemetry.Hooks{})

		// One span per command; hook events attach to it.
		ctx, span := telemetry.Span(cmd.Context(), "loomviz "+cmd.Name())
		cmd.SetContext(ctx)
		c.onClose(func() error {
			telemetry.End(span, nil)
			return nil
		})
	}
	observability.RegisterAll(hooks)
	return nil
}

// Close releases everything commands opened. It is safe to call after a
// command already tore down.
func (c *CLI) Close() error { return c.teardown() }

func (c *CLI) teardown() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *CLI) onClose(fn func() error) { c.closers = append(c.closers, fn) }

// =============================================================================
// Component Factories
// =============================================================================

// newCache opens the configured cache, falling back to the user cache dir.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	spec, err := c.cacheSpec()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, spec)
	if err != nil {
		return nil, err
	}
	c.onClose(cc.Close)
	return cache.Instrument(cc), nil
}

func (c *CLI) newKeyer() cache.Keyer {
	if c.cfg.Cache.Prefix != "" {
		return cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// newSource returns the feed source. HTTP feeds are snapshotted in the
// cache for one TTL so repeated commands stay fast.
func (c *CLI) newSource(ctx context.Context, cc cache.Cache) (source.Source, error) {
	if c.cfg.FeedFile != "" {
		return source.File(c.cfg.FeedFile), nil
	}
	src, err := source.NewHTTP(c.cfg.FeedURL)
	if err != nil {
		return nil, err
	}
	return &source.Cached{
		Inner:   src,
		Cache:   cc,
		Keyer:   c.newKeyer(),
		TTL:     c.cfg.Cache.TTL.Duration,
		Refresh: c.flags.refresh,
		Logger:  c.Logger,
	}, nil
}

func (c *CLI) newEngine() layout.Engine {
	var e layout.Engine
	switch c.cfg.Layout.Engine {
	case config.EngineGraphviz:
		gv := graphviz.New()
		c.onClose(gv.Close)
		e = gv
	default:
		e = layered.New(layered.WithLogger(c.Logger))
	}
	return layout.Instrument(c.cfg.Layout.Engine, e)
}

func (c *CLI) graphOptions(detailed bool) graphview.Options {
	return graphview.Options{
		MarkTerminal: c.cfg.Graph.MarkTerminal,
		Detailed:     detailed || c.cfg.Graph.Detailed,
	}
}

func (c *CLI) viewKeyOpts(detailed bool) cache.ViewKeyOpts {
	g := c.graphOptions(detailed)
	return cache.ViewKeyOpts{
		Engine:       c.cfg.Layout.Engine,
		Direction:    c.cfg.Layout.Direction,
		MarkTerminal: g.MarkTerminal,
		Detailed:     g.Detailed,
	}
}

// session bundles what a command needs to look at a feed.
type session struct {
	cache cache.Cache
	store *store.Store
	ctrl  *selection.Controller
}

// newSession builds the cache, source, store and controller. The
// controller is not loaded yet.
func (c *CLI) newSession(ctx context.Context, detailed bool, opts ...selection.Option) (*session, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	src, err := c.newSource(ctx, cc)
	if err != nil {
		return nil, err
	}
	st := store.New(src, store.WithLogger(c.Logger))
	c.onClose(st.Close)

	base := []selection.Option{
		selection.WithEngine(c.newEngine()),
		selection.WithLayoutOptions(c.cfg.LayoutOptions()),
		selection.WithGraphOptions(c.graphOptions(detailed)),
		selection.WithMaxScale(c.cfg.Layout.MaxScale),
		selection.WithLogger(c.Logger),
	}
	ctrl := selection.New(st, append(base, opts...)...)
	c.onClose(ctrl.Close)
	return &session{cache: cc, store: st, ctrl: ctrl}, nil
}

// loadSession builds a session and loads the feed behind a spinner.
func (c *CLI) loadSession(ctx context.Context, detailed bool, opts ...selection.Option) (*session, error) {
	s, err := c.newSession(ctx, detailed, opts...)
	if err != nil {
		return nil, err
	}
	spin := newSpinnerWithContext(ctx, "Loading "+s.store.Source().Name())
	spin.Start()
	err = s.ctrl.Load(ctx)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	return s, nil
}
