// Package config loads loomviz settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file (~/.config/loomviz/config.toml, or --config)
//  3. environment variables (LOOMVIZ_FEED_URL, LOOMVIZ_ADDR, LOOMVIZ_CACHE,
//     LOOMVIZ_ENGINE), which a .env file may supply
//  4. command-line flags, applied by the CLI
//
// A minimal file:
//
//	feed_url = "http://localhost:8080"
//
//	[layout]
//	engine = "graphviz"
//	direction = "TB"
//	max_scale = 1.2
//
//	[graph]
//	mark_terminal = true
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/layout"
)

const appName = "loomviz"

// Engine names accepted by layout.engine.
const (
	EngineLayered  = "layered"
	EngineGraphviz = "graphviz"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvFeedURL = "LOOMVIZ_FEED_URL"
	EnvAddr    = "LOOMVIZ_ADDR"
	EnvCache   = "LOOMVIZ_CACHE"
	EnvEngine  = "LOOMVIZ_ENGINE"
)

// Config is the complete settings tree.
type Config struct {
	FeedURL  string `toml:"feed_url"`
	FeedFile string `toml:"feed_file"`

	Server Server `toml:"server"`
	Layout Layout `toml:"layout"`
	Graph  Graph  `toml:"graph"`
	Cache  Cache  `toml:"cache"`
	Trace  bool   `toml:"trace"`
}

// Server configures `loomviz serve`.
type Server struct {
	Addr string `toml:"addr"`
	// Reload refreshes the feed periodically; 0 disables it.
	Reload Duration `toml:"reload"`
}

// Layout configures the layout engine and fit.
type Layout struct {
	Engine    string  `toml:"engine"`
	Direction string  `toml:"direction"`
	MaxScale  float64 `toml:"max_scale"`
	RankSep   float64 `toml:"rank_sep"`
	NodeSep   float64 `toml:"node_sep"`
}

// Graph configures node labels.
type Graph struct {
	MarkTerminal bool `toml:"mark_terminal"`
	Detailed     bool `toml:"detailed"`
}

// Cache configures the artifact cache.
type Cache struct {
	// URL is a cache spec understood by cache.Open: "none", a directory,
	// file://, redis:// or mongodb://. Empty means the user cache dir.
	URL    string   `toml:"url"`
	TTL    Duration `toml:"ttl"`
	Prefix string   `toml:"prefix"`
}

// Duration is a time.Duration written as "30s" in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		FeedURL: "http://localhost:8080",
		Server:  Server{Addr: "127.0.0.1:7070"},
		Layout: Layout{
			Engine:    EngineLayered,
			Direction: string(layout.LeftRight),
			MaxScale:  layout.MaxScaleDetail,
			RankSep:   layout.DefaultRankSep,
			NodeSep:   layout.DefaultNodeSep,
		},
		Cache: Cache{TTL: Duration{time.Hour}},
	}
}

// DefaultPath returns ~/.config/loomviz/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns ~/.cache/loomviz, honouring XDG_CACHE_HOME.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads path over the defaults and applies the environment. An empty
// path means [DefaultPath], which may be missing; an explicit path must
// exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg.ApplyEnv()
			return cfg, cfg.Validate()
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults. The environment is not
// consulted.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from LOOMVIZ_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvFeedURL); v != "" {
		c.FeedURL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvCache); v != "" {
		c.Cache.URL = v
	}
	if v := os.Getenv(EnvEngine); v != "" {
		c.Layout.Engine = v
	}
}

// Validate checks values the rest of the program relies on.
func (c Config) Validate() error {
	switch c.Layout.Engine {
	case EngineLayered, EngineGraphviz:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "layout.engine must be %q or %q, got %q", EngineLayered, EngineGraphviz, c.Layout.Engine)
	}
	switch layout.Direction(c.Layout.Direction) {
	case layout.TopBottom, layout.LeftRight:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "layout.direction must be TB or LR, got %q", c.Layout.Direction)
	}
	if c.Layout.MaxScale <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "layout.max_scale must be positive, got %s", strconv.FormatFloat(c.Layout.MaxScale, 'g', -1, 64))
	}
	if c.Layout.RankSep < 0 || c.Layout.NodeSep < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "layout separations must not be negative")
	}
	if c.Cache.TTL.Duration < 0 || c.Server.Reload.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "durations must not be negative")
	}
	return nil
}

// LayoutOptions returns the layout options these settings describe.
func (c Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Direction = layout.Direction(c.Layout.Direction)
	if c.Layout.RankSep > 0 {
		opts.RankSep = c.Layout.RankSep
	}
	if c.Layout.NodeSep > 0 {
		opts.NodeSep = c.Layout.NodeSep
	}
	return opts
}

// Write encodes c as TOML to path, creating parent directories.
func Write(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
