package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/pkg/cache"
	"github.com/matzehuels/loomviz/pkg/layout"
	"github.com/matzehuels/loomviz/pkg/selection"
)

// renderOpts holds options for the render command.
type renderOpts struct {
	output   string
	width    float64
	height   float64
	maxScale float64
	detailed bool
	overview bool
}

// fixedViewport is a Renderer that only reports a size. The render
// command draws to a file, not a surface.
type fixedViewport layout.Viewport

func (fixedViewport) Clear()                      {}
func (fixedViewport) Draw(selection.View) error   { return nil }
func (v fixedViewport) Viewport() layout.Viewport { return layout.Viewport(v) }

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		width:  selection.DefaultViewport.Width,
		height: selection.DefaultViewport.Height,
	}

	cmd := &cobra.Command{
		Use:   "render <index>",
		Short: "Render the step graph of one API as SVG",
		Long: `Render lays out the step graph of an API and writes it as an SVG sized to
the viewport, fitted the same way the viewer fits it.`,
		Example: `  loomviz render 0 -o dashboard.svg
  loomviz render 3 --width 1920 --height 1080 --overview`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return c.runRender(cmd, index, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: <method>_<path>.svg)")
	f.Float64Var(&opts.width, "width", opts.width, "viewport width")
	f.Float64Var(&opts.height, "height", opts.height, "viewport height")
	f.Float64Var(&opts.maxScale, "max-scale", 0, "zoom cap (default from config)")
	f.BoolVar(&opts.detailed, "detailed", false, "include output types and timeouts in step labels")
	f.BoolVar(&opts.overview, "overview", false, "use the overview zoom cap")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, index int, opts renderOpts) error {
	ctx := cmd.Context()
	vp := layout.Viewport{Width: opts.width, Height: opts.height}
	maxScale := c.cfg.Layout.MaxScale
	switch {
	case opts.maxScale > 0:
		maxScale = opts.maxScale
	case opts.overview:
		maxScale = layout.MaxScaleOverview
	}
	if err := validateViewport(vp, maxScale); err != nil {
		return err
	}

	s, err := c.loadSession(ctx, opts.detailed,
		selection.WithRenderer(fixedViewport(vp)),
		selection.WithMaxScale(maxScale))
	if err != nil {
		return err
	}

	keyer := c.newKeyer()
	api, err := s.store.Get(index)
	if err != nil {
		return err
	}
	viewKey := keyer.ViewKey(api, c.viewKeyOpts(opts.detailed))
	key := keyer.ArtifactKey(viewKey, cache.ArtifactKeyOpts{
		Format: "svg", Width: vp.Width, Height: vp.Height, MaxScale: maxScale,
	})

	out := opts.output
	if out == "" {
		out = defaultFilename(api.Method, api.Path)
	}

	prog := newProgress(c.Logger)
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("cache read failed", "err", err)
	}
	if !hit {
		v, err := s.ctrl.Select(ctx, index)
		if err != nil {
			return err
		}
		if data, err = v.SVG(); err != nil {
			return err
		}
		if err := s.cache.Set(ctx, key, data, c.cfg.Cache.TTL.Duration); err != nil {
			c.Logger.Warn("cache write failed", "err", err)
		}
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	prog.done("Rendered " + api.Title())
	printSuccess(c.out, "Rendered %s", api.Title())
	printFile(c.out, out)
	return nil
}

func validateViewport(vp layout.Viewport, maxScale float64) error {
	_, err := layout.Fit(layout.BoundingBox{}, vp, maxScale)
	return err
}

// defaultFilename derives a file name from an API, e.g.
// "GET /users/{id}" becomes "get_users_id.svg".
func defaultFilename(method, path string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '{' || r == '}':
			return -1
		default:
			return '_'
		}
	}, method+" "+path)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "_")
	if name == "" {
		name = "api"
	}
	return name + ".svg"
}
