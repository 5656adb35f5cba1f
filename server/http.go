// Package server exposes a loaded ontology over HTTP: term lookup and
// traversal endpoints, a query-expression endpoint, Prometheus metrics,
// and live reload of the backing ontology file.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ontograph/ontograph/graph"
	"github.com/ontograph/ontograph/ontology"
	"github.com/ontograph/ontograph/query"
)

// Handler serves the ontology query API. The engine is swapped
// atomically on reload, so in-flight requests keep the snapshot they
// started with.
type Handler struct {
	engine  atomic.Pointer[query.Engine]
	logger  *slog.Logger
	metrics *Metrics
	trajOpt query.TrajectoryOptions
}

// NewHandler creates a Handler serving the given engine.
func NewHandler(engine *query.Engine, trajOpt query.TrajectoryOptions, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	h := &Handler{
		logger:  logger,
		metrics: metrics,
		trajOpt: trajOpt,
	}
	h.Swap(engine)
	return h
}

// Swap replaces the served engine. Safe for concurrent use.
func (h *Handler) Swap(engine *query.Engine) {
	h.engine.Store(engine)
	h.metrics.SetTermsLoaded(engine.Graph().Len())
}

// Engine returns the current engine snapshot.
func (h *Handler) Engine() *query.Engine {
	return h.engine.Load()
}

// RegisterRoutes registers the API routes on a mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/roots", h.handleRoots)
	mux.HandleFunc("/api/leaves", h.handleLeaves)
	mux.HandleFunc("/api/path", h.handlePath)
	mux.HandleFunc("/api/query", h.handleQuery)
	mux.HandleFunc("/api/terms/", h.handleTerm)
	mux.Handle("/metrics", h.metrics.Handler())
}

// ErrorResponse is the standard JSON error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the JSON payload for GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Ontology string `json:"ontology,omitempty"`
	Terms    int    `json:"terms"`
}

// TermResponse is the JSON payload for GET /api/terms/{id}.
type TermResponse struct {
	Term      ontology.Term `json:"term"`
	ParentIDs []string      `json:"parent_ids"`
	ChildIDs  []string      `json:"child_ids"`
	Depth     int           `json:"depth"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g := h.Engine().Graph()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Ontology: g.Ontology(),
		Terms:    g.Len(),
	})
}

func (h *Handler) handleRoots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.respondTerms(w, h.Engine().Graph().Roots(), nil)
}

func (h *Handler) handleLeaves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.respondTerms(w, h.Engine().Graph().Leaves(), nil)
}

// handlePath handles GET /api/path?from={id}&to={id}.
func (h *Handler) handlePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_parameter", "Both 'from' and 'to' query parameters are required")
		return
	}

	start := time.Now()
	path, err := h.Engine().Introspector().PathBetween(from, to)
	h.observe("path", start, err)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// handleQuery handles GET /api/query?expr=op:term_id.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	expr := r.URL.Query().Get("expr")
	if expr == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_parameter", "The 'expr' query parameter is required")
		return
	}

	start := time.Now()
	results, err := h.Engine().Execute(expr)
	h.observe("query", start, err)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleTerm handles GET /api/terms/{id} and
// GET /api/terms/{id}/{operation}. Term IDs contain colons, so the ID
// is everything up to the next slash.
func (h *Handler) handleTerm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/terms/")
	id, op, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_id", "Term ID is required")
		return
	}

	if op == "" {
		h.respondTermInfo(w, id)
		return
	}

	e := h.Engine()
	start := time.Now()
	switch op {
	case "parents":
		terms, err := e.Navigator().Parents(id)
		h.observe(op, start, err)
		h.respondTerms(w, terms, err)
	case "children":
		terms, err := e.Navigator().Children(id)
		h.observe(op, start, err)
		h.respondTerms(w, terms, err)
	case "ancestors":
		terms, err := e.Navigator().Ancestors(id)
		h.observe(op, start, err)
		h.respondTerms(w, terms, err)
	case "descendants":
		terms, err := e.Navigator().Descendants(id)
		h.observe(op, start, err)
		h.respondTerms(w, terms, err)
	case "siblings":
		terms, err := e.Navigator().Siblings(id)
		h.observe(op, start, err)
		h.respondTerms(w, terms, err)
	case "trajectories":
		paths, err := e.Introspector().TrajectoriesFromRoot(id, h.trajOpt)
		h.observe(op, start, err)
		if err != nil {
			h.writeQueryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paths)
	default:
		writeJSONError(w, http.StatusNotFound, "unknown_operation", "Unknown operation: "+op)
	}
}

func (h *Handler) respondTermInfo(w http.ResponseWriter, id string) {
	e := h.Engine()
	g := e.Graph()

	start := time.Now()
	term, err := g.Term(id)
	if err != nil {
		h.observe("term", start, err)
		h.writeQueryError(w, err)
		return
	}
	parentIDs, _ := g.ParentIDs(id)
	childIDs, _ := g.ChildIDs(id)
	depth, err := e.Introspector().DistanceFromRoot(id)
	h.observe("term", start, err)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TermResponse{
		Term:      term,
		ParentIDs: parentIDs,
		ChildIDs:  childIDs,
		Depth:     depth,
	})
}

func (h *Handler) respondTerms(w http.ResponseWriter, terms []ontology.Term, err error) {
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	if terms == nil {
		terms = []ontology.Term{}
	}
	writeJSON(w, http.StatusOK, terms)
}

// writeQueryError maps query errors to HTTP statuses.
func (h *Handler) writeQueryError(w http.ResponseWriter, err error) {
	var notFound *graph.TermNotFoundError
	var noPath *query.NoPathError
	var unreachable *query.UnreachableError
	var limit *query.TrajectoryLimitExceededError
	var unsupported *query.UnsupportedOperationError

	switch {
	case errors.As(err, &notFound):
		writeJSONError(w, http.StatusNotFound, "term_not_found", err.Error())
	case errors.As(err, &noPath):
		writeJSONError(w, http.StatusNotFound, "no_path", err.Error())
	case errors.As(err, &unreachable):
		writeJSONError(w, http.StatusNotFound, "unreachable", err.Error())
	case errors.As(err, &limit):
		writeJSONError(w, http.StatusUnprocessableEntity, "trajectory_limit", err.Error())
	case errors.As(err, &unsupported):
		writeJSONError(w, http.StatusBadRequest, "unsupported_operation", err.Error())
	case errors.Is(err, query.ErrEmptyInput):
		writeJSONError(w, http.StatusBadRequest, "empty_input", err.Error())
	default:
		h.logger.Error("request failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (h *Handler) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.ObserveRequest(op, status, time.Since(start))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
