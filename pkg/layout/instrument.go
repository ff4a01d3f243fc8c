package layout

import (
	"context"
	"time"

	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/observability"
)

// Instrument wraps e so every Layout call is reported to the registered
// [observability.LayoutHooks] under name.
func Instrument(name string, e Engine) Engine {
	return EngineFunc(func(ctx context.Context, g *graphview.Graph, opts Options) (*Positioned, error) {
		hooks := observability.Layout()
		hooks.OnLayoutStart(ctx, name, g.Len())
		start := time.Now()
		p, err := e.Layout(ctx, g, opts)
		hooks.OnLayoutComplete(ctx, name, time.Since(start), err)
		return p, err
	})
}
