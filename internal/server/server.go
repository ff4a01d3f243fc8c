// Package server serves the loom viewer over HTTP.
//
// Routes:
//
//	GET  /                          redirect to /loom/index.html
//	GET  /loom/ui                   redirect to /loom/index.html
//	GET  /loom/index.html           API list and the selected graph
//	GET  /loom/api/graphs           descriptor feed as JSON
//	POST /loom/api/reload           reload the feed
//	GET  /loom/api/selection        selected view as JSON
//	POST /loom/api/selection/{i}    select API i
//	GET  /loom/api/apis/{i}         view of API i as JSON
//	GET  /loom/api/apis/{i}/svg     fitted SVG of API i
//	GET  /healthz                   liveness and load status
//
// The view endpoints accept width, height and max_scale query parameters
// for the fit. Errors are JSON with the error code; INDEX_OUT_OF_RANGE maps
// to 404, DANGLING_EDGE to 422 and FETCH_ERROR to 502.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/matzehuels/loomviz/pkg/cache"
	"github.com/matzehuels/loomviz/pkg/selection"
)

//go:embed assets/index.html
var assets embed.FS

var indexTmpl = template.Must(template.ParseFS(assets, "assets/index.html"))

// Options configures a Server.
type Options struct {
	// Cache stores rendered SVGs. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration

	// View describes the layout settings; it is part of every cache key.
	View cache.ViewKeyOpts

	// MaxScale caps the fit unless a request overrides it.
	MaxScale float64

	// Trace wraps the router in otelhttp.
	Trace bool

	Logger *log.Logger
}

// Server is the viewer's HTTP front end. All state lives in the controller.
type Server struct {
	ctrl   *selection.Controller
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds the router for ctrl.
func New(ctrl *selection.Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	s := &Server{ctrl: ctrl, opts: opts, logger: opts.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.logger))
	r.Use(middleware.Recoverer)
	if s.opts.Trace {
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "loomviz")
		})
	}

	r.Get("/", redirect("/loom/index.html"))
	r.Get("/healthz", s.handleHealth)

	r.Route("/loom", func(r chi.Router) {
		r.Get("/ui", redirect("/loom/index.html"))
		r.Get("/index.html", s.handleIndex)

		r.Route("/api", func(r chi.Router) {
			r.Get("/graphs", s.handleGraphs)
			r.Post("/reload", s.handleReload)
			r.Get("/selection", s.handleSelection)
			r.Post("/selection/{index}", s.handleSelect)
			r.Get("/apis/{index}", s.handleView)
			r.Get("/apis/{index}/svg", s.handleSVG)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Reload reloads the feed every interval until ctx is done. Failures are
// logged and kept in the controller status; the previous feed stays served.
func (s *Server) Reload(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ctrl.Load(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("periodic reload failed", "err", err)
			}
		}
	}
}

func redirect(to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, to, http.StatusFound)
	}
}
