package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/internal/config"
	"github.com/matzehuels/loomviz/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		reload time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer over HTTP",
		Long: `Serve starts the HTTP viewer. It lists the APIs of the feed and draws the
selected API's pipeline and step graph. A feed that cannot be fetched at
startup is reported by /healthz and retried on the next reload.`,
		Example: `  loomviz serve --feed http://orders.internal:8080
  loomviz serve --addr :7070 --reload 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := cmd.Flags()
			if f.Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			if f.Changed("reload") {
				c.cfg.Server.Reload.Duration = reload
			}
			// The server reloads on demand, so feed snapshots are write-only.
			c.flags.refresh = true

			s, err := c.newSession(ctx, false)
			if err != nil {
				return err
			}
			if err := s.ctrl.Load(ctx); err != nil {
				c.Logger.Warn("initial feed load failed", "source", s.store.Source().Name(), "err", err)
			}

			srv := server.New(s.ctrl, server.Options{
				Cache:    s.cache,
				Keyer:    c.newKeyer(),
				TTL:      c.cfg.Cache.TTL.Duration,
				View:     c.viewKeyOpts(false),
				MaxScale: c.cfg.Layout.MaxScale,
				Trace:    c.cfg.Trace,
				Logger:   c.Logger,
			})
			go srv.Reload(ctx, c.cfg.Server.Reload.Duration)

			printInfo(c.out, "Viewer at %s", StyleLink.Render("http://"+displayAddr(c.cfg.Server.Addr)+"/loom/index.html"))
			return srv.ListenAndServe(ctx, c.cfg.Server.Addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address (default from config, env "+config.EnvAddr+")")
	f.DurationVar(&reload, "reload", 0, "reload the feed periodically, e.g. 30s (0 disables)")
	return cmd
}

// displayAddr turns ":7070" into "localhost:7070" for printing.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
