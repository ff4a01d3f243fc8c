package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/interceptor"
	"github.com/matzehuels/loomviz/pkg/layout"
	"github.com/matzehuels/loomviz/pkg/layout/layered"
	"github.com/matzehuels/loomviz/pkg/observability"
	"github.com/matzehuels/loomviz/pkg/store"
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("selection controller closed")

// State is the controller's position in its lifecycle.
type State int

const (
	Empty State = iota
	Listed
	Selected
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Listed:
		return "listed"
	case Selected:
		return "selected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultViewport is used when no renderer is attached.
var DefaultViewport = layout.Viewport{Width: 1200, Height: 800}

// View is everything a surface draws for one selected API.
type View struct {
	Index  int
	API    descriptor.API
	Title  string
	Stages []interceptor.Stage

	// Graph, Positioned and Fit are unset when Err is non-nil.
	Graph      *graphview.Graph
	Positioned *layout.Positioned
	Fit        layout.Transform
	Viewport   layout.Viewport

	// Err is the reason the step graph could not be drawn.
	Err error
}

// SVG returns the drawing framed to the view's viewport and fit. Engines
// that do not draw natively are rendered with the built-in SVG writer.
func (v View) SVG() ([]byte, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	if v.Positioned == nil {
		return nil, errs.New(errs.ErrCodeInternal, "view %d has no layout", v.Index)
	}
	svg := v.Positioned.SVG
	if len(svg) == 0 {
		svg = layout.RenderSVG(v.Positioned, layout.DefaultOptions())
	}
	return layout.Frame(svg, v.Fit, v.Viewport), nil
}

// Renderer is a render surface.
type Renderer interface {
	// Clear removes the previous drawing.
	Clear()
	// Draw shows v. Views with Err set are drawn too.
	Draw(v View) error
	// Viewport reports the current drawable area.
	Viewport() layout.Viewport
}

// Status summarizes the controller for status bars and health checks.
type Status struct {
	State   State
	Index   int
	Count   int
	Version uint64
	// Err is the last load failure, cleared by the next successful load.
	Err error
}

// Controller owns the selection state of one surface.
type Controller struct {
	store      *store.Store
	engine     layout.Engine
	renderer   Renderer
	layoutOpts layout.Options
	graphOpts  graphview.Options
	maxScale   float64
	logger     *log.Logger

	mu      sync.Mutex
	state   State
	index   int
	view    View
	zoom    *layout.Zoom
	loadErr error
	closed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithEngine sets the layout engine (default: the layered engine).
func WithEngine(e layout.Engine) Option { return func(c *Controller) { c.engine = e } }

// WithRenderer attaches a render surface.
func WithRenderer(r Renderer) Option { return func(c *Controller) { c.renderer = r } }

// WithLayoutOptions overrides [layout.DefaultOptions].
func WithLayoutOptions(o layout.Options) Option { return func(c *Controller) { c.layoutOpts = o } }

// WithGraphOptions sets how step graphs are classified and labelled.
func WithGraphOptions(o graphview.Options) Option { return func(c *Controller) { c.graphOpts = o } }

// WithMaxScale caps the fit zoom (default [layout.MaxScaleDetail]).
func WithMaxScale(s float64) Option { return func(c *Controller) { c.maxScale = s } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a controller in the Empty state.
func New(st *store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:      st,
		layoutOpts: layout.DefaultOptions(),
		maxScale:   layout.MaxScaleDetail,
		logger:     log.New(io.Discard),
		index:      -1,
		zoom:       layout.NewZoom(layout.Identity),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = layered.New(layered.WithLogger(c.logger))
	}
	return c
}

// Store returns the backing store.
func (c *Controller) Store() *store.Store { return c.store }

// =============================================================================
// Loading
// =============================================================================

// Load (re)loads the feed. On success the controller becomes Listed and,
// if the feed is not empty, selects the first API. On failure nothing
// changes except [Status.Err].
//
// A load that completes after [Controller.Close] is discarded.
func (c *Controller) Load(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	_, err := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err != nil {
		c.loadErr = err
		c.logger.Error("load failed", "err", err)
		return err
	}

	c.loadErr = nil
	c.state = Listed
	c.index = -1
	c.view = View{}
	if c.store.Len() == 0 {
		if c.renderer != nil {
			c.renderer.Clear()
		}
		return nil
	}
	_, err = c.selectLocked(ctx, 0)
	return err
}

// =============================================================================
// Selection
// =============================================================================

// Select shows the API at index. An index outside the feed returns
// INDEX_OUT_OF_RANGE and leaves the current selection in place. Graph
// errors are carried by the returned View, not returned.
func (c *Controller) Select(ctx context.Context, index int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return View{}, ErrClosed
	}
	return c.selectLocked(ctx, index)
}

func (c *Controller) selectLocked(ctx context.Context, index int) (View, error) {
	start := time.Now()
	api, err := c.store.Get(index)
	if err != nil {
		observability.Selection().OnSelect(ctx, index, "", time.Since(start), err)
		return View{}, err
	}

	v := c.build(ctx, index, api, c.viewport())
	c.state = Selected
	c.index = index
	c.view = v
	c.zoom.Reset(v.Fit)

	if v.Err != nil {
		c.logger.Warn("cannot draw step graph", "api", v.Title, "err", v.Err)
	} else {
		c.logger.Debug("selected", "index", index, "api", v.Title, "steps", v.Graph.Len())
	}
	observability.Selection().OnSelect(ctx, index, v.Title, time.Since(start), v.Err)

	if c.renderer != nil {
		c.renderer.Clear()
		if err := c.renderer.Draw(v); err != nil {
			c.logger.Error("draw failed", "api", v.Title, "err", err)
			return v, err
		}
	}
	return v, nil
}

// Preview builds the view of index for viewport vp without changing the
// selection. Surfaces that serve many clients (the HTTP viewer) use it
// instead of Select.
func (c *Controller) Preview(ctx context.Context, index int, vp layout.Viewport) (View, error) {
	api, err := c.store.Get(index)
	if err != nil {
		return View{}, err
	}
	return c.build(ctx, index, api, vp), nil
}

func (c *Controller) build(ctx context.Context, index int, api descriptor.API, vp layout.Viewport) View {
	v := View{
		Index:    index,
		API:      api,
		Title:    api.Title(),
		Stages:   interceptor.Build(api.Interceptors),
		Viewport: vp,
		Fit:      layout.Identity,
	}

	g, err := graphview.Build(api.Nodes, api.Edges, c.graphOpts)
	if err != nil {
		v.Err = err
		return v
	}
	pos, err := c.engine.Layout(ctx, g, c.layoutOpts)
	if err != nil {
		v.Err = err
		return v
	}
	fit, err := layout.Fit(pos.BBox, vp, c.maxScale)
	if err != nil {
		v.Err = err
		return v
	}
	v.Graph, v.Positioned, v.Fit = g, pos, fit
	return v
}

func (c *Controller) viewport() layout.Viewport {
	if c.renderer == nil {
		return DefaultViewport
	}
	return c.renderer.Viewport()
}

// =============================================================================
// Accessors
// =============================================================================

// Current returns the selected view. ok is false unless the state is
// Selected.
func (c *Controller) Current() (v View, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Selected {
		return View{}, false
	}
	return c.view, true
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Index returns the selected index, or -1.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:   c.state,
		Index:   c.index,
		Count:   c.store.Len(),
		Version: c.store.Version(),
		Err:     c.loadErr,
	}
}

// =============================================================================
// Zoom
// =============================================================================

// Transform returns the transform the selected view is drawn with.
func (c *Controller) Transform() layout.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom.Current()
}

// Pan moves the selected drawing.
func (c *Controller) Pan(dx, dy float64) layout.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom.Pan(dx, dy)
}

// ZoomAt zooms the selected drawing around a viewport point.
func (c *Controller) ZoomAt(factor, px, py float64) layout.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom.ZoomAt(factor, px, py)
}

// ResetZoom drops manual zoom and pan.
func (c *Controller) ResetZoom() layout.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom.Reset(c.zoom.Fit())
	return c.zoom.Current()
}

// Refit recomputes the fit after the renderer's viewport changed and
// redraws the selection. Manual zoom is dropped.
func (c *Controller) Refit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != Selected || c.view.Positioned == nil {
		return nil
	}
	vp := c.viewport()
	fit, err := layout.Fit(c.view.Positioned.BBox, vp, c.maxScale)
	if err != nil {
		return err
	}
	c.view.Fit, c.view.Viewport = fit, vp
	c.zoom.Reset(fit)
	if c.renderer != nil {
		c.renderer.Clear()
		return c.renderer.Draw(c.view)
	}
	return nil
}

// =============================================================================
// Teardown
// =============================================================================

// Close tears the controller down and clears the renderer. Loads still in
// flight complete without effect. Close does not close the store.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.state = Empty
	c.index = -1
	c.view = View{}
	if c.renderer != nil {
		c.renderer.Clear()
	}
	return nil
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
