package layout

import (
	"context"

	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/graphview"
)

// Direction is the rank direction of a drawing.
type Direction string

const (
	// TopBottom draws dependencies above their consumers.
	TopBottom Direction = "TB"
	// LeftRight draws dependencies left of their consumers.
	LeftRight Direction = "LR"
)

// Default geometry in display units.
const (
	DefaultRankSep    = 80
	DefaultNodeSep    = 40
	DefaultMargin     = 40
	DefaultNodeWidth  = 180
	DefaultNodeHeight = 60
	DefaultPadding    = 12
)

// Options configures an engine run.
type Options struct {
	Direction  Direction
	RankSep    float64
	NodeSep    float64
	MarginX    float64
	MarginY    float64
	NodeWidth  float64
	NodeHeight float64
	Padding    float64
	Arrowhead  string
	Curved     bool
}

// DefaultOptions returns the left-to-right preset used by the viewer.
func DefaultOptions() Options {
	o := Options{Direction: LeftRight, Curved: true}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero fields with the defaults.
func (o *Options) SetDefaults() {
	if o.Direction == "" {
		o.Direction = LeftRight
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.MarginX == 0 {
		o.MarginX = DefaultMargin
	}
	if o.MarginY == 0 {
		o.MarginY = DefaultMargin
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Arrowhead == "" {
		o.Arrowhead = "vee"
	}
}

// Validate checks direction and geometry.
func (o Options) Validate() error {
	if o.Direction != TopBottom && o.Direction != LeftRight {
		return errs.New(errs.ErrCodeInvalidInput, "direction must be TB or LR, got %q", o.Direction)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"rank separation", o.RankSep},
		{"node separation", o.NodeSep},
		{"node width", o.NodeWidth},
		{"node height", o.NodeHeight},
	} {
		if f.v <= 0 {
			return errs.New(errs.ErrCodeInvalidInput, "%s must be positive, got %g", f.name, f.v)
		}
	}
	if o.MarginX < 0 || o.MarginY < 0 || o.Padding < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "margins and padding must not be negative")
	}
	return nil
}

// Point is a position in display units, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeBox is a positioned step. X and Y are the box center.
type NodeBox struct {
	Name   string          `json:"name"`
	Label  string          `json:"label"`
	Class  graphview.Class `json:"class"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
}

// EdgePath is a positioned edge; Points runs from tail to head.
type EdgePath struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
}

// BoundingBox is the size of a drawing including its margins.
type BoundingBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Positioned is the output of an engine. SVG is set only by engines that
// draw natively.
type Positioned struct {
	Nodes []NodeBox   `json:"nodes"`
	Edges []EdgePath  `json:"edges"`
	BBox  BoundingBox `json:"bbox"`
	SVG   []byte      `json:"-"`
}

// Node returns the box of the named step.
func (p *Positioned) Node(name string) (NodeBox, bool) {
	for _, n := range p.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeBox{}, false
}

// Engine positions an abstract graph.
type Engine interface {
	Layout(ctx context.Context, g *graphview.Graph, opts Options) (*Positioned, error)
}

// EngineFunc adapts a function to [Engine].
type EngineFunc func(ctx context.Context, g *graphview.Graph, opts Options) (*Positioned, error)

// Layout calls f.
func (f EngineFunc) Layout(ctx context.Context, g *graphview.Graph, opts Options) (*Positioned, error) {
	return f(ctx, g, opts)
}
