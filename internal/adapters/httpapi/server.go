// Package httpapi exposes the entry service over HTTP/JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ctxutil"
	"github.com/example/todoledger/internal/ports/primary"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// errBadRequest marks input the transport rejected before reaching the service.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// Server translates HTTP requests into EntryService calls.
type Server struct {
	service primary.EntryService
	logger  *slog.Logger
}

// NewServer wires the entry routes into a chi router. A nil logger means slog.Default().
func NewServer(service primary.EntryService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{service: service, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/entries", func(r chi.Router) {
		r.Post("/", s.createEntry)
		r.Get("/{id}", s.getEntry)
		r.Patch("/{id}", s.updateEntry)
		r.Delete("/{id}", s.deleteEntry)
	})
	r.Get("/owners/{owner}/entries", s.listEntries)

	return r
}

// requestID takes the client's X-Request-ID or assigns a fresh uuid.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", ctxutil.RequestIDFromContext(r.Context()),
		)
	})
}

type createEntryBody struct {
	Description string          `json:"description"`
	Priority    *entry.Priority `json:"priority,omitempty"`
	Owner       string          `json:"owner"`
}

type updateEntryBody struct {
	Description *string         `json:"description,omitempty"`
	Status      *entry.Status   `json:"status,omitempty"`
	Priority    *entry.Priority `json:"priority,omitempty"`
	Owner       string          `json:"owner"`
}

type attributeBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func toAttributes(attrs []primary.Attribute) []attributeBody {
	out := make([]attributeBody, len(attrs))
	for i, a := range attrs {
		out[i] = attributeBody{Key: a.Key, Value: a.Value}
	}
	return out
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var body createEntryBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Owner == "" {
		s.writeError(w, r, badRequest("owner is required"))
		return
	}

	ctx := ctxutil.WithActorID(r.Context(), body.Owner)
	resp, err := s.service.CreateEntry(ctx, primary.CreateEntryRequest{
		Description: body.Description,
		Priority:    body.Priority,
		Owner:       body.Owner,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"new_entry_id": resp.NewEntryID,
		"attributes":   toAttributes(resp.Attributes),
	})
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body updateEntryBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Owner == "" {
		s.writeError(w, r, badRequest("owner is required"))
		return
	}

	ctx := ctxutil.WithActorID(r.Context(), body.Owner)
	resp, err := s.service.UpdateEntry(ctx, primary.UpdateEntryRequest{
		ID:          id,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		Owner:       body.Owner,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updated_entry_id": resp.UpdatedEntryID,
		"attributes":       toAttributes(resp.Attributes),
	})
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		s.writeError(w, r, badRequest("owner is required"))
		return
	}

	ctx := ctxutil.WithActorID(r.Context(), owner)
	resp, err := s.service.DeleteEntry(ctx, primary.DeleteEntryRequest{ID: id, Owner: owner})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deleted_entry_id": resp.DeletedEntryID,
		"attributes":       toAttributes(resp.Attributes),
	})
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.service.GetEntry(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	req := primary.ListEntriesRequest{Owner: chi.URLParam(r, "owner")}
	q := r.URL.Query()

	if raw := q.Get("start_after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, badRequest("invalid start_after %q", raw))
			return
		}
		req.StartAfter = &v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			s.writeError(w, r, badRequest("invalid limit %q", raw))
			return
		}
		limit := uint32(v)
		req.Limit = &limit
	}

	resp, err := s.service.ListEntriesByOwner(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": resp.Entries})
}

func parseID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid entry id %q", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, entry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entry.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"error", err,
			"request_id", ctxutil.RequestIDFromContext(r.Context()),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
