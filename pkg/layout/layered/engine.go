package layered

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/loomviz/pkg/dag"
	"github.com/matzehuels/loomviz/pkg/dag/transform"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/layout"
)

// Engine is a deterministic pure-Go [layout.Engine].
type Engine struct {
	orderer Orderer
	logger  *log.Logger
}

var _ layout.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithOrderer replaces the in-rank ordering (default [Barycenter]).
func WithOrderer(o Orderer) Option { return func(e *Engine) { e.orderer = o } }

// WithLogger sets the logger for cycle warnings.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// New returns an engine.
func New(opts ...Option) *Engine {
	e := &Engine{orderer: Barycenter{}, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout positions g and draws it with [layout.RenderSVG].
func (e *Engine) Layout(ctx context.Context, g *graphview.Graph, opts layout.Options) (*layout.Positioned, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := g.DAG()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayout, err, "build step graph")
	}
	if removed := transform.BreakCycles(d); removed > 0 {
		e.logger.Warn("graph has cycles, drawing without back edges", "removed", removed)
	}
	ranks := transform.AssignLayers(d)
	orders := e.orderer.OrderRanks(d, ranks)

	pos := place(d, g, orders, opts)
	pos.SVG = layout.RenderSVG(pos, opts)
	return pos, nil
}

// place assigns box centers. The rank axis runs down (TB) or right (LR);
// each rank is centered on the widest one along the other axis.
func place(d *dag.DAG, g *graphview.Graph, orders [][]string, opts layout.Options) *layout.Positioned {
	lr := opts.Direction == layout.LeftRight

	rankSize, crossSize := opts.NodeHeight, opts.NodeWidth
	marginRank, marginCross := opts.MarginY, opts.MarginX
	if lr {
		rankSize, crossSize = opts.NodeWidth, opts.NodeHeight
		marginRank, marginCross = opts.MarginX, opts.MarginY
	}

	span := func(n int) float64 {
		if n == 0 {
			return 0
		}
		return float64(n)*crossSize + float64(n-1)*opts.NodeSep
	}

	widest := 0.0
	for _, o := range orders {
		widest = max(widest, span(len(o)))
	}

	pos := &layout.Positioned{
		Nodes: make([]layout.NodeBox, 0, d.NodeCount()),
		Edges: make([]layout.EdgePath, 0, len(g.Edges)),
	}
	centers := make(map[string]layout.Point, d.NodeCount())

	for r, o := range orders {
		along := marginRank + float64(r)*(rankSize+opts.RankSep) + rankSize/2
		offset := marginCross + (widest-span(len(o)))/2
		for i, id := range o {
			across := offset + float64(i)*(crossSize+opts.NodeSep) + crossSize/2
			p := layout.Point{X: across, Y: along}
			if lr {
				p = layout.Point{X: along, Y: across}
			}
			centers[id] = p

			box := layout.NodeBox{Name: id, X: p.X, Y: p.Y, Width: opts.NodeWidth, Height: opts.NodeHeight}
			if n, ok := g.Node(id); ok {
				box.Label, box.Class = n.Label, n.Class
			}
			pos.Nodes = append(pos.Nodes, box)
		}
	}

	for _, e := range g.Edges {
		pos.Edges = append(pos.Edges, layout.EdgePath{
			From:   e.From,
			To:     e.To,
			Points: route(centers[e.From], centers[e.To], opts, lr),
		})
	}

	depth := float64(len(orders))*rankSize + float64(max(len(orders)-1, 0))*opts.RankSep
	if lr {
		pos.BBox = layout.BoundingBox{Width: depth + 2*marginRank, Height: widest + 2*marginCross}
	} else {
		pos.BBox = layout.BoundingBox{Width: widest + 2*marginCross, Height: depth + 2*marginRank}
	}
	return pos
}

// route connects the facing sides of two boxes with a four-point path that
// leaves and enters along the rank axis.
func route(from, to layout.Point, opts layout.Options, lr bool) []layout.Point {
	if lr {
		dir := 1.0
		if to.X < from.X {
			dir = -1
		}
		start := layout.Point{X: from.X + dir*opts.NodeWidth/2, Y: from.Y}
		end := layout.Point{X: to.X - dir*opts.NodeWidth/2, Y: to.Y}
		mid := (start.X + end.X) / 2
		return []layout.Point{start, {X: mid, Y: start.Y}, {X: mid, Y: end.Y}, end}
	}
	dir := 1.0
	if to.Y < from.Y {
		dir = -1
	}
	start := layout.Point{X: from.X, Y: from.Y + dir*opts.NodeHeight/2}
	end := layout.Point{X: to.X, Y: to.Y - dir*opts.NodeHeight/2}
	mid := (start.Y + end.Y) / 2
	return []layout.Point{start, {X: start.X, Y: mid}, {X: end.X, Y: mid}, end}
}
