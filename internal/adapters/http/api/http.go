// Package api serves the forest over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/forest/internal/adapters/repository"
	"github.com/okian/forest/internal/domain/dedupe"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/types"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an entry for async storage. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.Entry) bool

	// Entry looks a stored entry up by id.
	Entry(ctx context.Context, id string) (types.Entry, error)

	// Scene composes the current forest for a viewport. A non-empty
	// highlight asks for that light's pulse.
	Scene(ctx context.Context, vp layout.Viewport, highlight string) (types.Scene, error)

	// Frame returns the live flicker offsets.
	Frame(ctx context.Context) types.Frame
}

// Server wires HTTP routes for the business API.
type Server struct {
	router chi.Router

	ops            *opsHandler
	entriesHandler *EntriesHandler
	sceneHandler   *SceneHandler
}

// NewServer creates a new API server with all handlers. Extra registrars
// can mount further routes, such as the API docs, on the same router.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		ops:            newOpsHandler(statsProvider),
		entriesHandler: NewEntriesHandler(deps),
		sceneHandler:   NewSceneHandler(deps),
	}
	cfg := serverConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.routes(cfg)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(cfg serverConfig) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestFields)
	r.Use(middleware.Recoverer)

	r.With(instrument("healthz")).Get("/healthz", s.ops.health)
	r.With(instrument("stats")).Get("/stats", s.ops.statsJSON)
	r.With(instrument("entries")).Post("/entries", s.entriesHandler.HandlePostEntry)
	r.With(instrument("entry")).Get("/entry/{id}", s.entriesHandler.HandleGetEntry)
	r.With(instrument("scene")).Get("/scene", s.sceneHandler.HandleScene)
	r.With(instrument("frame")).Get("/scene/frame", s.sceneHandler.HandleFrame)
	r.With(instrument("svg")).Get("/forest.svg", s.sceneHandler.HandleSVG)

	for _, register := range cfg.registrars {
		register(r)
	}
	s.router = r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

// isNotFound translates store misses into 404s.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound)
}
