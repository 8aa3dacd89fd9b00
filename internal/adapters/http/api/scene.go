package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/forest/internal/adapters/render"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/types"
	"github.com/okian/forest/pkg/metrics"
)

const maxViewportPx = 16384

// SceneDependencies defines what the scene handlers need.
type SceneDependencies interface {
	Scene(ctx context.Context, vp layout.Viewport, highlight string) (types.Scene, error)
	Frame(ctx context.Context) types.Frame
}

// SceneHandler serves the composed forest.
type SceneHandler struct {
	deps SceneDependencies
}

// NewSceneHandler creates a new scene handler.
func NewSceneHandler(deps SceneDependencies) *SceneHandler {
	return &SceneHandler{deps: deps}
}

// HandleScene handles GET /scene?w=&h=&new=.
func (h *SceneHandler) HandleScene(w http.ResponseWriter, r *http.Request) {
	s, ok := h.compose(w, r, "api.get_scene")
	if !ok {
		return
	}
	metrics.RecordSceneComposed("json")
	writeJSON(w, http.StatusOK, s)
}

// HandleSVG handles GET /forest.svg?w=&h=&new=&static=.
func (h *SceneHandler) HandleSVG(w http.ResponseWriter, r *http.Request) {
	s, ok := h.compose(w, r, "api.get_svg")
	if !ok {
		return
	}
	var opts []render.SVGOption
	if static, _ := strconv.ParseBool(r.URL.Query().Get("static")); static {
		opts = append(opts, render.WithStatic())
	}
	metrics.RecordSceneComposed("svg")
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(render.RenderSVG(s, opts...))
}

// HandleFrame handles GET /scene/frame.
func (h *SceneHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Frame(r.Context()))
}

func (h *SceneHandler) compose(w http.ResponseWriter, r *http.Request, op string) (types.Scene, bool) {
	vp, err := parseViewport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return types.Scene{}, false
	}
	s, err := h.deps.Scene(r.Context(), vp, r.URL.Query().Get("new"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return types.Scene{}, false
	}
	return s, true
}

// parseViewport reads w and h. Both absent yields the zero viewport, which
// the service replaces with its reference size.
func parseViewport(r *http.Request) (layout.Viewport, error) {
	q := r.URL.Query()
	ws, hs := q.Get("w"), q.Get("h")
	if ws == "" && hs == "" {
		return layout.Viewport{}, nil
	}
	wv, err := parseExtent("w", ws)
	if err != nil {
		return layout.Viewport{}, err
	}
	hv, err := parseExtent("h", hs)
	if err != nil {
		return layout.Viewport{}, err
	}
	return layout.Viewport{W: wv, H: hv}, nil
}

func parseExtent(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > maxViewportPx {
		return 0, fmt.Errorf("%s must be in (0, %d]", name, maxViewportPx)
	}
	return v, nil
}
