package selection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/interceptor"
	"github.com/matzehuels/loomviz/pkg/layout"
	"github.com/matzehuels/loomviz/pkg/source"
	"github.com/matzehuels/loomviz/pkg/store"
)

// recorder is a Renderer that remembers what it was asked to do.
type recorder struct {
	mu    sync.Mutex
	vp    layout.Viewport
	calls []string
	drawn []View
	err   error
}

func (r *recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "clear")
}

func (r *recorder) Draw(v View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "draw")
	r.drawn = append(r.drawn, v)
	return r.err
}

func (r *recorder) Viewport() layout.Viewport { return r.vp }

type flakySource struct {
	apis []descriptor.API
	err  error
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Load(context.Context) ([]descriptor.API, error) {
	return f.apis, f.err
}

var usersAPI = descriptor.API{
	Method: "GET", Path: "/users", Type: "sync",
	Interceptors: []descriptor.InterceptorRef{},
	Nodes:        []descriptor.Node{{Name: "fetch", Required: true, Terminal: true}},
	Edges:        []descriptor.Edge{},
}

var ordersAPI = descriptor.API{
	Method: "POST", Path: "/orders", Type: "builder", ResponseType: "OrderResponse",
	Interceptors: []descriptor.InterceptorRef{
		{Name: "AuthInterceptor", Order: 2},
		{Name: "LogInterceptor", Order: 1},
	},
	Nodes: []descriptor.Node{
		{Name: "validate", Required: true},
		{Name: "price", OutputType: "Quote"},
		{Name: "save", Required: true, Terminal: true},
	},
	Edges: []descriptor.Edge{{From: "validate", To: "price"}, {From: "price", To: "save"}},
}

var brokenAPI = descriptor.API{
	Method: "GET", Path: "/broken",
	Interceptors: []descriptor.InterceptorRef{{Name: "LogInterceptor", Order: 1}},
	Nodes:        []descriptor.Node{{Name: "a", Required: true}},
	Edges:        []descriptor.Edge{{From: "a", To: "missing"}},
}

func newController(t *testing.T, src source.Source, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	r := &recorder{vp: layout.Viewport{Width: 800, Height: 600}}
	c := New(store.New(src), append([]Option{WithRenderer(r)}, opts...)...)
	t.Cleanup(func() { c.Close() })
	return c, r
}

func TestInitialState(t *testing.T) {
	c, _ := newController(t, source.Static())
	if c.State() != Empty || c.Index() != -1 {
		t.Errorf("State = %v, Index = %d", c.State(), c.Index())
	}
	if _, ok := c.Current(); ok {
		t.Error("Current should be unset before load")
	}
}

func TestLoadAutoSelectsFirst(t *testing.T) {
	c, r := newController(t, source.Static(usersAPI, ordersAPI))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.State() != Selected || c.Index() != 0 {
		t.Fatalf("State = %v, Index = %d", c.State(), c.Index())
	}

	v, ok := c.Current()
	if !ok {
		t.Fatal("Current not set")
	}
	if len(v.Stages) != 0 {
		t.Errorf("empty interceptors should hide the pipeline, got %d stages", len(v.Stages))
	}
	if v.Graph.Len() != 1 || len(v.Graph.Edges) != 0 {
		t.Errorf("graph = %d nodes, %d edges", v.Graph.Len(), len(v.Graph.Edges))
	}
	if n, _ := v.Graph.Node("fetch"); n.Class != graphview.ClassTerminal {
		t.Errorf("fetch class = %q, want terminal", n.Class)
	}
	if v.Fit.Scale <= 0 || v.Fit.Scale > layout.MaxScaleDetail {
		t.Errorf("fit scale = %v", v.Fit.Scale)
	}
	if got := len(r.calls); got != 2 || r.calls[0] != "clear" || r.calls[1] != "draw" {
		t.Errorf("renderer calls = %v, want [clear draw]", r.calls)
	}
}

func TestLoadEmptyFeed(t *testing.T) {
	c, r := newController(t, source.Static())
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.State() != Listed || c.Index() != -1 {
		t.Errorf("State = %v, Index = %d; want listed, -1", c.State(), c.Index())
	}
	if len(r.drawn) != 0 {
		t.Error("nothing should be drawn for an empty feed")
	}
}

func TestSelectBuildsPipeline(t *testing.T) {
	c, _ := newController(t, source.Static(usersAPI, ordersAPI))
	ctx := context.Background()
	c.Load(ctx)

	v, err := c.Select(ctx, 1)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if v.Title != "POST /orders → OrderResponse" {
		t.Errorf("Title = %q", v.Title)
	}
	want := []string{"Request", "Log", "Auth", "Execution"}
	if len(v.Stages) != len(want) {
		t.Fatalf("stages = %v", v.Stages)
	}
	for i, s := range v.Stages {
		if s.Label() != want[i] {
			t.Errorf("stage %d = %q, want %q", i, s.Label(), want[i])
		}
	}
	if v.Stages[1].Kind != interceptor.Interceptor || v.Stages[1].Order != 1 {
		t.Errorf("stage 1 = %+v", v.Stages[1])
	}
	if v.Positioned == nil || len(v.Positioned.Nodes) != 3 || len(v.Positioned.Edges) != 2 {
		t.Errorf("positioned = %+v", v.Positioned)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	c, r := newController(t, source.Static(usersAPI))
	ctx := context.Background()
	c.Load(ctx)
	drawn := len(r.drawn)

	for _, idx := range []int{-1, 1, 42} {
		if _, err := c.Select(ctx, idx); !errs.Is(err, errs.ErrCodeIndexOutOfRange) {
			t.Errorf("Select(%d) err = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
	}
	if c.Index() != 0 || c.State() != Selected {
		t.Errorf("bad selection changed state: %v/%d", c.State(), c.Index())
	}
	if len(r.drawn) != drawn {
		t.Error("bad selection should not redraw")
	}
}

func TestSelectBeforeLoad(t *testing.T) {
	c, _ := newController(t, source.Static(usersAPI))
	if _, err := c.Select(context.Background(), 0); !errs.Is(err, errs.ErrCodeIndexOutOfRange) {
		t.Errorf("Select before Load err = %v", err)
	}
	if c.State() != Empty {
		t.Errorf("State = %v, want empty", c.State())
	}
}

func TestDanglingEdgeScopedToView(t *testing.T) {
	c, r := newController(t, source.Static(usersAPI, brokenAPI))
	ctx := context.Background()
	c.Load(ctx)

	v, err := c.Select(ctx, 1)
	if err != nil {
		t.Fatalf("Select should not fail for a graph error: %v", err)
	}
	if !errs.Is(v.Err, errs.ErrCodeDanglingEdge) {
		t.Errorf("View.Err = %v, want DANGLING_EDGE", v.Err)
	}
	if v.Graph != nil || v.Positioned != nil {
		t.Error("no partial graph should be attached")
	}
	if len(v.Stages) != 3 {
		t.Errorf("pipeline should still be built, got %d stages", len(v.Stages))
	}
	if c.State() != Selected || c.Index() != 1 {
		t.Errorf("State = %v, Index = %d", c.State(), c.Index())
	}
	if last := r.drawn[len(r.drawn)-1]; last.Err == nil {
		t.Error("renderer should receive the failing view")
	}
	if c.Store().Len() != 2 {
		t.Error("store must be untouched")
	}

	if v, _ := c.Select(ctx, 0); v.Err != nil {
		t.Errorf("other APIs still render: %v", v.Err)
	}
}

func TestFailedLoadKeepsState(t *testing.T) {
	src := &flakySource{apis: []descriptor.API{usersAPI}}
	c, _ := newController(t, src)
	ctx := context.Background()
	if err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}

	src.err = errors.New("connection refused")
	err := c.Load(ctx)
	if !errs.Is(err, errs.ErrCodeFetch) {
		t.Fatalf("Load err = %v, want FETCH_ERROR", err)
	}
	st := c.Status()
	if st.Err == nil || st.State != Selected || st.Index != 0 || st.Count != 1 {
		t.Errorf("Status = %+v", st)
	}

	src.err = nil
	if err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Status().Err != nil {
		t.Error("successful load should clear the error indicator")
	}
}

func TestReloadResetsZoom(t *testing.T) {
	c, _ := newController(t, source.Static(usersAPI, ordersAPI))
	ctx := context.Background()
	c.Load(ctx)

	fit := c.Transform()
	c.ZoomAt(2, 400, 300)
	c.Pan(10, 10)
	if c.Transform() == fit {
		t.Fatal("gestures should change the transform")
	}

	v, _ := c.Select(ctx, 1)
	if c.Transform() != v.Fit {
		t.Errorf("new selection should reset zoom: %v != %v", c.Transform(), v.Fit)
	}

	c.Pan(5, 0)
	if got := c.ResetZoom(); got != v.Fit {
		t.Errorf("ResetZoom = %v, want %v", got, v.Fit)
	}
}

func TestRefit(t *testing.T) {
	c, r := newController(t, source.Static(ordersAPI))
	c.Load(context.Background())
	before, _ := c.Current()

	r.vp = layout.Viewport{Width: 300, Height: 200}
	if err := c.Refit(); err != nil {
		t.Fatal(err)
	}
	after, _ := c.Current()
	if after.Fit.Scale >= before.Fit.Scale {
		t.Errorf("smaller viewport should shrink the fit: %v -> %v", before.Fit.Scale, after.Fit.Scale)
	}
	if after.Viewport != r.vp {
		t.Errorf("Viewport = %v", after.Viewport)
	}
}

func TestPreviewDoesNotSelect(t *testing.T) {
	c, _ := newController(t, source.Static(usersAPI, ordersAPI))
	ctx := context.Background()
	c.Load(ctx)

	v, err := c.Preview(ctx, 1, layout.Viewport{Width: 1920, Height: 1080})
	if err != nil {
		t.Fatal(err)
	}
	if v.Index != 1 || v.Viewport.Width != 1920 {
		t.Errorf("preview = %+v", v)
	}
	if c.Index() != 0 {
		t.Errorf("Preview changed the selection to %d", c.Index())
	}
	if _, err := c.Preview(ctx, 9, layout.Viewport{Width: 1, Height: 1}); !errs.Is(err, errs.ErrCodeIndexOutOfRange) {
		t.Errorf("Preview(9) err = %v", err)
	}
}

func TestDrawErrorReturned(t *testing.T) {
	c, r := newController(t, source.Static(usersAPI))
	r.err = errors.New("surface gone")
	if err := c.Load(context.Background()); err == nil {
		t.Error("draw failure should surface")
	}
	if c.State() != Selected {
		t.Errorf("State = %v", c.State())
	}
}

func TestClose(t *testing.T) {
	c, r := newController(t, source.Static(usersAPI))
	ctx := context.Background()
	c.Load(ctx)

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if c.State() != Empty {
		t.Errorf("State after Close = %v", c.State())
	}
	if r.calls[len(r.calls)-1] != "clear" {
		t.Error("Close should clear the renderer")
	}
	if err := c.Load(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close err = %v", err)
	}
	if _, err := c.Select(ctx, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Select after Close err = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestConcurrentSelect(t *testing.T) {
	c, _ := newController(t, source.Static(usersAPI, ordersAPI, brokenAPI))
	ctx := context.Background()
	c.Load(ctx)

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Select(ctx, i%3)
			if err != nil {
				t.Error(err)
				return
			}
			if v.Index != i%3 {
				t.Errorf("view index %d, want %d", v.Index, i%3)
			}
		}()
	}
	wg.Wait()

	v, ok := c.Current()
	if !ok || v.Index != c.Index() {
		t.Errorf("Current index %d disagrees with Index %d", v.Index, c.Index())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Empty: "empty", Listed: "listed", Selected: "selected", State(7): "State(7)"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
