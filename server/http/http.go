package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	memoryservice "github.com/wyh7/MLE-agent/internal/service/memory"
	"github.com/wyh7/MLE-agent/memory"
	"github.com/wyh7/MLE-agent/server"
)

type httpServer struct {
	options server.Options
	service *memoryservice.Service
	server  *http.Server
}

func (s *httpServer) Run() error {
	slog.InfoContext(s.options.Context, "memory server listening", "address", s.options.Address)
	return s.server.ListenAndServe()
}

func (s *httpServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *httpServer) routes() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/memory").Subrouter()

	api.HandleFunc("", s.handleAdd).Methods(http.MethodPost)
	api.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	api.HandleFunc("/records", s.handleGetAll).Methods(http.MethodGet)
	api.HandleFunc("/records/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/records/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/collections/{name}", s.handleDrop).Methods(http.MethodDelete)
	api.HandleFunc("/peek", s.handlePeek).Methods(http.MethodGet)
	api.HandleFunc("/count", s.handleCount).Methods(http.MethodGet)
	api.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)

	var handler http.Handler = router

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	return handler
}

type addRequest struct {
	Items      []itemPayload `json:"items"`
	Collection string        `json:"collection,omitempty"`
	Ids        []string      `json:"ids,omitempty"`
}

type itemPayload struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

type queryRequest struct {
	Texts      []string `json:"texts"`
	Collection string   `json:"collection,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

func (s *httpServer) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]memory.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, memory.Item{Query: item.Query, Response: item.Response})
	}

	ids, err := s.service.Add(r.Context(), items, req.Collection, req.Ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids})
}

func (s *httpServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := s.service.Query(r.Context(), req.Texts, req.Collection, req.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *httpServer) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	records, err := s.service.Get(r.Context(), id, r.URL.Query().Get("collection"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *httpServer) handleGetAll(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Get(r.Context(), "", r.URL.Query().Get("collection"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *httpServer) handlePeek(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.service.Peek(r.Context(), r.URL.Query().Get("collection"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *httpServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.service.Delete(r.Context(), id, r.URL.Query().Get("collection")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *httpServer) handleDrop(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := s.service.Drop(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *httpServer) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.service.Count(r.Context(), r.URL.Query().Get("collection"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (s *httpServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, memoryservice.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, memory.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, memory.ErrResetNotAllowed):
		writeError(w, http.StatusForbidden, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Handler exposes the routed handler for tests and embedding.
func (s *httpServer) Handler() http.Handler {
	return s.server.Handler
}

func NewServer(service *memoryservice.Service, opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	s := &httpServer{
		options: options,
		service: service,
	}

	s.server = &http.Server{
		Addr:    options.Address,
		Handler: s.routes(),
	}

	return s
}
