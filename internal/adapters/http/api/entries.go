package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okian/forest/internal/domain/dedupe"
	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/types"
)

const (
	maxIDLength   = 200
	maxEntryBytes = 4 << 10
)

// EntryDependencies defines what the entries handler needs.
type EntryDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.Entry) bool
	Entry(ctx context.Context, id string) (types.Entry, error)
}

// EntriesHandler handles ingest and lookup of entry references.
type EntriesHandler struct {
	deps EntryDependencies
	now  func() time.Time
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntryDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps, now: time.Now}
}

// HandlePostEntry handles POST /entries. The body is optional; a missing id
// gets a fresh UUID and a missing created_at is now.
func (h *EntriesHandler) HandlePostEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_entry"

	var req types.EntryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxEntryBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := h.entryFrom(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if h.deps.SeenAndRecord(r.Context(), e.ID) {
		writeJSON(w, http.StatusOK, types.Ack{Status: "duplicate", ID: e.ID, Duplicate: true})
		return
	}
	if ok := h.deps.Enqueue(r.Context(), e); !ok {
		h.deps.Unrecord(r.Context(), e.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, types.Ack{Status: "accepted", ID: e.ID})
}

func (h *EntriesHandler) entryFrom(req types.EntryRequest) (model.Entry, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if len(id) > maxIDLength {
		return model.Entry{}, fmt.Errorf("id longer than %d bytes", maxIDLength)
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return model.Entry{}, errors.New("id contains control characters")
	}
	created := h.now().UTC()
	if req.CreatedAt != nil {
		if req.CreatedAt.IsZero() {
			return model.Entry{}, errors.New("created_at must not be zero")
		}
		created = req.CreatedAt.UTC()
	}
	e := model.Entry{ID: id, CreatedAt: created}
	return e, e.Validate()
}

// HandleGetEntry handles GET /entry/{id}, the link target of every light.
func (h *EntriesHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_entry"

	id, err := entryID(r)
	if err != nil || strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := h.deps.Entry(r.Context(), id)
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
	default:
		writeJSON(w, http.StatusOK, entry)
	}
}

// entryID reads the {id} parameter. chi matches on RawPath when the request
// carries one, and the parameter is still escaped in that case only.
func entryID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, nil
	}
	return url.PathUnescape(id)
}
