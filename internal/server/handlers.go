package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/loomviz/pkg/cache"
	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/interceptor"
	"github.com/matzehuels/loomviz/pkg/layout"
	"github.com/matzehuels/loomviz/pkg/selection"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error     string    `json:"error"`
	Code      errs.Code `json:"code"`
	RequestID string    `json:"requestId,omitempty"`
}

// ViewResponse is the JSON form of a selection.View.
type ViewResponse struct {
	Index     int                 `json:"index"`
	Title     string              `json:"title"`
	Method    string              `json:"method"`
	Path      string              `json:"path"`
	Type      string              `json:"type"`
	Stages    []interceptor.Stage `json:"stages"`
	Nodes     []layout.NodeBox    `json:"nodes"`
	Edges     []layout.EdgePath   `json:"edges"`
	BBox      layout.BoundingBox  `json:"bbox"`
	Viewport  layout.Viewport     `json:"viewport"`
	Transform layout.Transform    `json:"transform"`
	Error     string              `json:"error,omitempty"`
	Code      errs.Code           `json:"code,omitempty"`
}

// NewViewResponse converts v for JSON clients.
func NewViewResponse(v selection.View) ViewResponse {
	resp := ViewResponse{
		Index:     v.Index,
		Title:     v.Title,
		Method:    v.API.Method,
		Path:      v.API.Path,
		Type:      v.API.Type,
		Stages:    v.Stages,
		Nodes:     []layout.NodeBox{},
		Edges:     []layout.EdgePath{},
		Viewport:  v.Viewport,
		Transform: v.Fit,
	}
	if v.Positioned != nil {
		resp.Nodes, resp.Edges, resp.BBox = v.Positioned.Nodes, v.Positioned.Edges, v.Positioned.BBox
	}
	if v.Err != nil {
		resp.Error = errs.UserMessage(v.Err)
		resp.Code = errs.GetCode(v.Err)
	}
	return resp
}

// HealthResponse reports load status.
type HealthResponse struct {
	Status   string `json:"status"`
	State    string `json:"state"`
	APIs     int    `json:"apis"`
	Version  uint64 `json:"version"`
	Selected int    `json:"selected"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     errs.UserMessage(err),
		Code:      errs.GetCode(err),
		RequestID: RequestIDFrom(r.Context()),
	})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeIndexOutOfRange:
		return http.StatusNotFound
	case errs.ErrCodeDanglingEdge, errs.ErrCodeInvalidGraph:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeFetch, errs.ErrCodeNetwork:
		return http.StatusBadGateway
	case errs.ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Status()
	resp := HealthResponse{
		Status:   "ok",
		State:    st.State.String(),
		APIs:     st.Count,
		Version:  st.Version,
		Selected: st.Index,
	}
	if st.Err != nil {
		resp.Status = "degraded"
		resp.Error = st.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	apis := s.ctrl.Store().All()
	data, err := descriptor.Marshal(apis)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "encode feed"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Load(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleHealth(w, r)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.ctrl.Current()
	if !ok {
		s.writeError(w, r, errs.New(errs.ErrCodeIndexOutOfRange, "nothing selected"))
		return
	}
	s.writeView(w, v)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.ctrl.Select(r.Context(), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, v)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, _, err := s.preview(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, v)
}

func (s *Server) writeView(w http.ResponseWriter, v selection.View) {
	status := http.StatusOK
	if v.Err != nil {
		status = statusFor(v.Err)
	}
	writeJSON(w, status, NewViewResponse(v))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	vp, maxScale, err := s.viewport(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	api, err := s.ctrl.Store().Get(index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	viewKey := s.opts.Keyer.ViewKey(api, s.opts.View)
	key := s.opts.Keyer.ArtifactKey(viewKey, cache.ArtifactKeyOpts{
		Format: "svg", Width: vp.Width, Height: vp.Height, MaxScale: maxScale,
	})
	if data, hit, err := s.opts.Cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "err", err)
	} else if hit {
		writeSVG(w, data)
		return
	}

	v, _, err := s.preview(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := v.SVG()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.opts.Cache.Set(ctx, key, data, s.opts.TTL); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	}
	writeSVG(w, data)
}

func writeSVG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

type indexPage struct {
	APIs      []descriptor.API
	Selected  int
	View      *selection.View
	LoadError string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Selected: -1}

	if q := r.URL.Query().Get("api"); q != "" {
		index, err := strconv.Atoi(q)
		if err != nil {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "api must be an integer, got %q", q))
			return
		}
		if _, err := s.ctrl.Select(r.Context(), index); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	st := s.ctrl.Status()
	page.APIs = s.ctrl.Store().All()
	if st.Err != nil {
		page.LoadError = st.Err.Error()
	}
	if v, ok := s.ctrl.Current(); ok {
		page.Selected = v.Index
		page.View = &v
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, page); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "render index"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// Request parsing
// =============================================================================

// preview builds the view named by the request, fitted with the
// request's max_scale.
func (s *Server) preview(r *http.Request) (selection.View, float64, error) {
	index, err := indexParam(r)
	if err != nil {
		return selection.View{}, 0, err
	}
	vp, maxScale, err := s.viewport(r)
	if err != nil {
		return selection.View{}, 0, err
	}
	v, err := s.ctrl.Preview(r.Context(), index, vp)
	if err != nil || v.Err != nil {
		return v, maxScale, err
	}
	fit, err := layout.Fit(v.Positioned.BBox, vp, maxScale)
	if err != nil {
		return v, maxScale, err
	}
	v.Fit = fit
	return v, maxScale, nil
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "index must be an integer, got %q", raw)
	}
	return index, nil
}

// viewport reads width, height and max_scale, falling back to the
// controller's default viewport and the configured cap.
func (s *Server) viewport(r *http.Request) (layout.Viewport, float64, error) {
	vp := selection.DefaultViewport
	maxScale := s.opts.MaxScale
	if maxScale <= 0 {
		maxScale = layout.MaxScaleDetail
	}

	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"width", &vp.Width},
		{"height", &vp.Height},
		{"max_scale", &maxScale},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return vp, 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a number, got %q", p.name, raw)
		}
		*p.dst = v
	}
	if err := errs.ValidateViewport(vp.Width, vp.Height, maxScale); err != nil {
		return vp, 0, err
	}
	return vp, maxScale, nil
}
