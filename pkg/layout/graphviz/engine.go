package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	gv "github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/layout"
)

// plainFormat is Graphviz's line-oriented geometry output.
const plainFormat gv.Format = "plain"

// Engine is a [layout.Engine] backed by Graphviz dot.
//
// The Graphviz runtime is created on first use and reused; calls are
// serialized because the runtime is not safe for concurrent use.
type Engine struct {
	mu sync.Mutex
	gv *gv.Graphviz
}

var _ layout.Engine = (*Engine)(nil)

// New returns an engine. Call Close to release the Graphviz runtime.
func New() *Engine { return &Engine{} }

// Close releases the Graphviz runtime, if any.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gv == nil {
		return nil
	}
	err := e.gv.Close()
	e.gv = nil
	return err
}

// Layout positions g and renders its SVG.
func (e *Engine) Layout(ctx context.Context, g *graphview.Graph, opts layout.Options) (*layout.Positioned, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plain, svg, err := e.render(ctx, ToDOT(g, opts))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayout, err, "graphviz layout")
	}

	pos, err := ParsePlain(plain, opts.MarginX, opts.MarginY)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayout, err, "parse graphviz geometry")
	}
	for i := range pos.Nodes {
		if n, ok := g.Node(pos.Nodes[i].Name); ok {
			pos.Nodes[i].Label = n.Label
			pos.Nodes[i].Class = n.Class
		}
	}
	if w, h, ok := viewBoxSize(svg); ok {
		pos.BBox = layout.BoundingBox{Width: w, Height: h}
	}
	pos.SVG = normalizeViewBox(svg)
	return pos, nil
}

func (e *Engine) render(ctx context.Context, dot string) (plain, svg []byte, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gv == nil {
		if e.gv, err = gv.New(ctx); err != nil {
			return nil, nil, fmt.Errorf("init graphviz: %w", err)
		}
	}

	graph, err := gv.ParseBytes([]byte(dot))
	if err != nil {
		return nil, nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var plainBuf, svgBuf bytes.Buffer
	if err := e.gv.Render(ctx, graph, plainFormat, &plainBuf); err != nil {
		return nil, nil, fmt.Errorf("render plain: %w", err)
	}
	if err := e.gv.Render(ctx, graph, gv.SVG, &svgBuf); err != nil {
		return nil, nil, fmt.Errorf("render svg: %w", err)
	}
	return plainBuf.Bytes(), svgBuf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func viewBoxSize(svg []byte) (w, h float64, ok bool) {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return 0, 0, false
	}
	w, _ = strconv.ParseFloat(string(match[3]), 64)
	h, _ = strconv.ParseFloat(string(match[4]), 64)
	return w, h, w > 0 && h > 0
}

// normalizeViewBox replaces the Graphviz root element with one whose viewBox
// starts at the origin and whose size is in display units rather than pt.
func normalizeViewBox(svg []byte) []byte {
	w, h, ok := viewBoxSize(svg)
	if !ok {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
